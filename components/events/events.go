// components/events/events.go
//
// Read-only event schedule for guests and admins.
//
// Routes (mounted at /events)
// ---------------------------
//   GET / – `{"events": [...]}` in display order.
//
//------------------------------------------------------------------------------

package events

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/internal/acl"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/event"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/session"
)

var _ component.Component = (*Component)(nil)

// Lister is the slice of *event.Service this component uses.
type Lister interface {
	List(ctx context.Context) ([]event.Event, error)
}

// Component serves the schedule.
type Component struct {
	events Lister
}

// New wires the events component.
func New(events Lister) *Component { return &Component{events: events} }

// Name returns the canonical component key.
func (c *Component) Name() string { return "events" }

// Prefix is the mount point.
func (c *Component) Prefix() string { return "/events" }

// Routes builds the sub-router.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(acl.Require(session.KindGuest, session.KindAdmin))
	r.Get("/", c.handleList)
	return r
}

// List is the wire shape shared with the admin surface.
type List struct {
	Events []event.Event `json:"events"`
}

func (c *Component) handleList(w http.ResponseWriter, r *http.Request) {
	es, err := c.events.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, List{Events: es})
}
