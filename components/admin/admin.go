// components/admin/admin.go
//
// Admin component: guest, invite-code, event, dashboard, and account
// endpoints.  Every route requires a full admin session; admin_pending
// callers get the same 401 as anonymous ones.
//
// Routes (mounted at /admin)
// --------------------------
//   GET    /guests                        list with invite code and RSVP summary
//   POST   /guests                        create (code optional, generated if blank)
//   GET    /guests/{id}                   one guest
//   PUT    /guests/{id}                   edit name and party size
//   DELETE /guests/{id}                   delete (cascades)
//   POST   /guests/{id}/regenerate-code   new code, old one stops working
//   GET    /events                        schedule
//   POST   /events                        create
//   PUT    /events/{id}                   edit
//   DELETE /events/{id}                   delete
//   GET    /dashboard/stats               aggregates
//   POST   /change-password               rotate own password
//
//------------------------------------------------------------------------------

package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/internal/acl"
	"github.com/yanizio/guestlist/internal/auth"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/event"
	"github.com/yanizio/guestlist/internal/guest"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/rsvp"
	"github.com/yanizio/guestlist/internal/session"
	"github.com/yanizio/guestlist/internal/stats"
	"github.com/yanizio/guestlist/internal/validate"
)

var _ component.Component = (*Component)(nil)

/*──────────────────────────── Dependencies ─────────────────────────────────*/

// Guests is the slice of *guest.Service this component uses.
type Guests interface {
	Create(ctx context.Context, in guest.Input, code string) (guest.Created, error)
	Get(ctx context.Context, id string) (guest.Guest, error)
	List(ctx context.Context) ([]guest.Guest, error)
	Update(ctx context.Context, id string, in guest.Input) (guest.Guest, error)
	Delete(ctx context.Context, id string) error
}

// Codes is the slice of *invite.Service this component uses.
type Codes interface {
	CodeFor(ctx context.Context, guestID string) (string, error)
	GuestCodes(ctx context.Context) (map[string]string, error)
	Regenerate(ctx context.Context, guestID string) (string, error)
}

// Rsvps is the slice of *rsvp.Service this component uses.
type Rsvps interface {
	Summaries(ctx context.Context) (map[string]rsvp.Summary, error)
	Summary(ctx context.Context, guestID string) (rsvp.Summary, error)
}

// Events is the slice of *event.Service this component uses.
type Events interface {
	List(ctx context.Context) ([]event.Event, error)
	Create(ctx context.Context, in event.Input) (event.Event, error)
	Update(ctx context.Context, id string, in event.Input) (event.Event, error)
	Delete(ctx context.Context, id string) error
}

// Stats is the slice of *stats.Service this component uses.
type Stats interface {
	Compute(ctx context.Context) (stats.Stats, error)
}

// Passwords is the slice of *admin.Service this component uses.
type Passwords interface {
	ChangePassword(ctx context.Context, adminID, current, next string) error
}

// Deps bundles the services behind the admin surface.
type Deps struct {
	Guests    Guests
	Codes     Codes
	Rsvps     Rsvps
	Events    Events
	Stats     Stats
	Passwords Passwords
}

// Component serves /admin.
type Component struct {
	Deps
}

// New wires the admin component.
func New(d Deps) *Component { return &Component{Deps: d} }

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "admin" }

// Prefix is the mount point.
func (c *Component) Prefix() string { return "/admin" }

// Routes builds the sub-router.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(acl.Require(session.KindAdmin))

	r.Route("/guests", func(r chi.Router) {
		r.Get("/", c.listGuests)
		r.Post("/", c.createGuest)
		r.Get("/{id}", c.getGuest)
		r.Put("/{id}", c.updateGuest)
		r.Delete("/{id}", c.deleteGuest)
		r.Post("/{id}/regenerate-code", c.regenerateCode)
	})
	r.Route("/events", func(r chi.Router) {
		r.Get("/", c.listEvents)
		r.Post("/", c.createEvent)
		r.Put("/{id}", c.updateEvent)
		r.Delete("/{id}", c.deleteEvent)
	})
	r.Get("/dashboard/stats", c.dashboardStats)
	r.Post("/change-password", c.changePassword)
	return r
}

/*──────────────────────────── Account ──────────────────────────────────────*/

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

func (c *Component) changePassword(w http.ResponseWriter, r *http.Request) {
	adminID, ok := auth.AdminID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	var in changePasswordRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := c.Passwords.ChangePassword(r.Context(), adminID, in.CurrentPassword, in.NewPassword); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Password changed successfully"})
}

/*──────────────────────────── Dashboard ────────────────────────────────────*/

func (c *Component) dashboardStats(w http.ResponseWriter, r *http.Request) {
	st, err := c.Stats.Compute(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
