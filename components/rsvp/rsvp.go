// components/rsvp/rsvp.go
//
// Guest-facing RSVP endpoints.
//
// Routes (mounted at /rsvp, guest sessions only)
// ----------------------------------------------
//   GET  /status – party name, size, and current response.
//   POST /       – submit or replace the party's response.
//
//------------------------------------------------------------------------------

package rsvp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/internal/acl"
	"github.com/yanizio/guestlist/internal/auth"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/httpx"
	domain "github.com/yanizio/guestlist/internal/rsvp"
	"github.com/yanizio/guestlist/internal/session"
)

var _ component.Component = (*Component)(nil)

// Service is the slice of *rsvp.Service this component uses.
type Service interface {
	Status(ctx context.Context, guestID string) (domain.Status, error)
	Submit(ctx context.Context, guestID string, attendees []domain.AttendeeInput) (domain.Rsvp, error)
}

// Component serves the RSVP form.
type Component struct {
	svc Service
}

// New wires the RSVP component.
func New(svc Service) *Component { return &Component{svc: svc} }

// Name returns the canonical component key.
func (c *Component) Name() string { return "rsvp" }

// Prefix is the mount point.
func (c *Component) Prefix() string { return "/rsvp" }

// Routes builds the sub-router.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(acl.Require(session.KindGuest))
	r.Get("/status", c.handleStatus)
	r.Post("/", c.handleSubmit)
	return r
}

type submitRequest struct {
	Attendees []domain.AttendeeInput `json:"attendees"`
}

func (c *Component) handleStatus(w http.ResponseWriter, r *http.Request) {
	guestID, ok := auth.GuestID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	st, err := c.svc.Status(r.Context(), guestID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}

func (c *Component) handleSubmit(w http.ResponseWriter, r *http.Request) {
	guestID, ok := auth.GuestID(r.Context())
	if !ok {
		httpx.Unauthorized(w)
		return
	}
	var in submitRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	out, err := c.svc.Submit(r.Context(), guestID, in.Attendees)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
