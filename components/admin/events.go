// components/admin/events.go
//
// Event catalogue editing.

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/components/events"
	"github.com/yanizio/guestlist/internal/event"
	"github.com/yanizio/guestlist/internal/httpx"
)

func (c *Component) listEvents(w http.ResponseWriter, r *http.Request) {
	es, err := c.Events.List(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, events.List{Events: es})
}

func (c *Component) createEvent(w http.ResponseWriter, r *http.Request) {
	var in event.Input
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	e, err := c.Events.Create(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (c *Component) updateEvent(w http.ResponseWriter, r *http.Request) {
	var in event.Input
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	e, err := c.Events.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (c *Component) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
