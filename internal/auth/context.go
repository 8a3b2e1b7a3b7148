// internal/auth/context.go
//
// Request-scoped session helpers.
//
// Usage
// -----
//     // acl.Authenticate attaches the live session, if any.
//     ctx = auth.WithSession(ctx, s)
//
//     // Handlers behind acl.Require read it back.
//     s, ok := auth.SessionFrom(ctx)
//     id, ok := auth.GuestID(ctx)
//
// Notes
// -----
// • Absence of a session is not an error here; gating lives in acl.
// • Oxford commas, two spaces after periods.

package auth

import (
	"context"

	"github.com/yanizio/guestlist/internal/session"
)

// sessionKey is unexported to avoid context-key collisions.
type sessionKey struct{}

// WithSession returns a new context carrying s.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom extracts the session from ctx.  It returns false when no
// session is attached.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(session.Session)
	return s, ok
}

// GuestID returns the guest id of a guest session.
func GuestID(ctx context.Context) (string, bool) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return "", false
	}
	p, ok := s.Principal.(session.GuestPrincipal)
	return p.GuestID, ok
}

// AdminID returns the admin id of a full admin session.
func AdminID(ctx context.Context) (string, bool) {
	s, ok := SessionFrom(ctx)
	if !ok {
		return "", false
	}
	p, ok := s.Principal.(session.AdminPrincipal)
	return p.AdminID, ok
}
