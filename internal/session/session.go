// internal/session/session.go
//
// Session types.
//
// Context
//   A session is an opaque bearer token issued in exchange for an invite
//   code.  It is in exactly one of three states, modelled as a sealed
//   Principal:
//
//     GuestPrincipal        – guest code exchanged; RSVP surface only.
//     AdminPendingPrincipal – admin code exchanged; must complete login.
//     AdminPrincipal        – admin login succeeded on the same token.
//
//   The only legal transition is AdminPending → Admin (Manager.Upgrade).
//   Storage keeps the tag in sessions.session_type plus nullable guest_id
//   and admin_id columns; fromRow refuses rows whose columns disagree with
//   the tag.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"database/sql"
	"fmt"
	"time"
)

// Kind is the stored session_type tag.
type Kind string

const (
	KindGuest        Kind = "guest"
	KindAdminPending Kind = "admin_pending"
	KindAdmin        Kind = "admin"
)

// Principal is the sealed set of session states.
type Principal interface {
	Kind() Kind
	sealed()
}

// GuestPrincipal identifies a guest party.
type GuestPrincipal struct{ GuestID string }

// AdminPendingPrincipal holds no identity until login succeeds.
type AdminPendingPrincipal struct{}

// AdminPrincipal identifies a logged-in admin.
type AdminPrincipal struct{ AdminID string }

func (GuestPrincipal) Kind() Kind        { return KindGuest }
func (AdminPendingPrincipal) Kind() Kind { return KindAdminPending }
func (AdminPrincipal) Kind() Kind        { return KindAdmin }

func (GuestPrincipal) sealed()        {}
func (AdminPendingPrincipal) sealed() {}
func (AdminPrincipal) sealed()        {}

// Session is a live, validated session.
type Session struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// Kind is shorthand for s.Principal.Kind().
func (s Session) Kind() Kind { return s.Principal.Kind() }

// View is the introspection shape returned by Describe.  It never carries
// the token or any credential.
type View struct {
	SessionType   Kind   `json:"session_type"`
	GuestID       string `json:"guest_id,omitempty"`
	GuestName     string `json:"guest_name,omitempty"`
	AdminID       string `json:"admin_id,omitempty"`
	AdminUsername string `json:"admin_username,omitempty"`
}

// row mirrors one sessions record.
type row struct {
	ID          string         `db:"id"`
	Token       string         `db:"token"`
	SessionType string         `db:"session_type"`
	GuestID     sql.NullString `db:"guest_id"`
	AdminID     sql.NullString `db:"admin_id"`
	ExpiresAt   time.Time      `db:"expires_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

// fromRow converts storage into the tagged variant.
func fromRow(r row) (Session, error) {
	s := Session{ID: r.ID, Token: r.Token, ExpiresAt: r.ExpiresAt}
	switch Kind(r.SessionType) {
	case KindGuest:
		if !r.GuestID.Valid || r.AdminID.Valid {
			return Session{}, fmt.Errorf("session %s: guest session with inconsistent ids", r.ID)
		}
		s.Principal = GuestPrincipal{GuestID: r.GuestID.String}
	case KindAdminPending:
		if r.GuestID.Valid || r.AdminID.Valid {
			return Session{}, fmt.Errorf("session %s: admin_pending session carries ids", r.ID)
		}
		s.Principal = AdminPendingPrincipal{}
	case KindAdmin:
		if !r.AdminID.Valid || r.GuestID.Valid {
			return Session{}, fmt.Errorf("session %s: admin session with inconsistent ids", r.ID)
		}
		s.Principal = AdminPrincipal{AdminID: r.AdminID.String}
	default:
		return Session{}, fmt.Errorf("session %s: unknown type %q", r.ID, r.SessionType)
	}
	return s, nil
}

// toRow is the inverse of fromRow.
func toRow(s Session, createdAt time.Time) row {
	r := row{
		ID:          s.ID,
		Token:       s.Token,
		SessionType: string(s.Kind()),
		ExpiresAt:   s.ExpiresAt,
		CreatedAt:   createdAt,
	}
	switch p := s.Principal.(type) {
	case GuestPrincipal:
		r.GuestID = sql.NullString{String: p.GuestID, Valid: true}
	case AdminPrincipal:
		r.AdminID = sql.NullString{String: p.AdminID, Valid: true}
	}
	return r
}
