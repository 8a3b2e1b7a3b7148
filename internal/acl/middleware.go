// internal/acl/middleware.go
//
// Chi middleware helpers that gate routes by session type.
//
// Context
// -------
// Authenticate runs once near the top of the stack.  It resolves the
// session cookie and, when the token is live, attaches the session to the
// request context.  Require then admits only the listed session types.
//
// Every rejection, whether the cookie is missing, expired, revoked, or of
// the wrong type, answers the same 401 `{"error":"Unauthorized"}` so a
// caller cannot tell which condition failed.
//
// Notes
// -----
// • A lookup failure other than "no such session" is logged and treated as
//   a 500.
// • Oxford commas, two spaces after periods.

package acl

import (
	"context"
	"errors"
	"net/http"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/auth"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/session"
)

// Lookup resolves a token to a live session.  *session.Manager satisfies it.
type Lookup interface {
	Lookup(ctx context.Context, token string) (session.Session, error)
}

// Authenticate attaches the live session behind the request's cookie.
func Authenticate(sessions Lookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if sessions == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			s, err := sessions.Lookup(r.Context(), token)
			switch {
			case err == nil:
				ctx := auth.WithSession(r.Context(), s)
				ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(
					"session_id", s.ID, "session_type", s.Kind()))
				r = r.WithContext(ctx)
			case errors.Is(err, apperr.ErrUnauthenticated):
				// fall through anonymous
			default:
				httpx.WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require admits requests whose session is ANY of the supplied kinds.
func Require(kinds ...session.Kind) func(http.Handler) http.Handler {
	if len(kinds) == 0 {
		panic("acl.Require: at least one session kind must be supplied")
	}
	allow := make(map[session.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		allow[k] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := auth.SessionFrom(r.Context())
			if !ok {
				httpx.Unauthorized(w)
				return
			}
			if _, ok := allow[s.Kind()]; !ok {
				logger.FromContext(r.Context()).Debugw("session type rejected",
					"path", r.URL.Path, "session_type", s.Kind())
				httpx.Unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny admits any live session.
func RequireAny() func(http.Handler) http.Handler {
	return Require(session.KindGuest, session.KindAdminPending, session.KindAdmin)
}
