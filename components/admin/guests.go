// components/admin/guests.go
//
// Guest and invite-code handlers.  Each guest is returned with its current
// invite code and an RSVP roll-up so the admin list needs one request.

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/internal/guest"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/rsvp"
)

// GuestView is one row of the admin guest list.
type GuestView struct {
	guest.Guest
	InviteCode *string      `json:"invite_code"`
	Rsvp       rsvp.Summary `json:"rsvp"`
}

// GuestList is the list payload.
type GuestList struct {
	Guests []GuestView `json:"guests"`
	Total  int         `json:"total"`
}

type createGuestRequest struct {
	guest.Input
	InviteCode string `json:"invite_code"`
}

type codeResponse struct {
	InviteCode string `json:"invite_code"`
}

func view(g guest.Guest, code string, s rsvp.Summary) GuestView {
	v := GuestView{Guest: g, Rsvp: s}
	if code != "" {
		v.InviteCode = &code
	}
	return v
}

func (c *Component) listGuests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gs, err := c.Guests.List(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	codes, err := c.Codes.GuestCodes(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sums, err := c.Rsvps.Summaries(ctx)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	out := GuestList{Guests: make([]GuestView, 0, len(gs)), Total: len(gs)}
	for _, g := range gs {
		out.Guests = append(out.Guests, view(g, codes[g.ID], sums[g.ID]))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (c *Component) createGuest(w http.ResponseWriter, r *http.Request) {
	var in createGuestRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	created, err := c.Guests.Create(r.Context(), in.Input, in.InviteCode)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, view(created.Guest, created.InviteCode, rsvp.Summary{}))
}

func (c *Component) getGuest(w http.ResponseWriter, r *http.Request) {
	g, err := c.Guests.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c.writeGuest(w, r, http.StatusOK, g)
}

func (c *Component) updateGuest(w http.ResponseWriter, r *http.Request) {
	var in guest.Input
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	g, err := c.Guests.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	c.writeGuest(w, r, http.StatusOK, g)
}

func (c *Component) deleteGuest(w http.ResponseWriter, r *http.Request) {
	if err := c.Guests.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) regenerateCode(w http.ResponseWriter, r *http.Request) {
	code, err := c.Codes.Regenerate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, codeResponse{InviteCode: code})
}

// writeGuest decorates g with its code and RSVP summary.
func (c *Component) writeGuest(w http.ResponseWriter, r *http.Request, status int, g guest.Guest) {
	ctx := r.Context()
	code, err := c.Codes.CodeFor(ctx, g.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sum, err := c.Rsvps.Summary(ctx, g.ID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, status, view(g, code, sum))
}
