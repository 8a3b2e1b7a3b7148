// internal/session/cookie.go
//
// Session cookie helpers.
//
// Context
//   The token travels in an HttpOnly cookie named “session”.  Secure is on
//   unless the deployment explicitly opts out for plain-HTTP development.
//   Expires tracks the server-side expiry so browsers drop the cookie at
//   the same moment the token stops working.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Cookies writes and clears the session cookie.
type Cookies struct {
	Secure bool
}

// Set attaches s's token to the response.
func (c Cookies) Set(w http.ResponseWriter, s Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.ExpiresAt,
	})
}

// Clear expires the session cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// TokenFromRequest returns the session token, or "" when the cookie is
// missing or empty.
func TokenFromRequest(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
