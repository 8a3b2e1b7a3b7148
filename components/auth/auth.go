// components/auth/auth.go
//
// Authentication component: invite-code exchange, admin login, logout, and
// session introspection.
//
// Routes (mounted at /auth)
// -------------------------
//   POST /code         – public; code → guest or admin_pending session.
//   POST /admin/login  – admin_pending only; upgrades the same session.
//   POST /logout       – any caller; revokes the token and clears the cookie.
//   GET  /session      – any live session; who am I.
//
// Notes
// -----
// • Code exchange and login attempts are logged with client IP, UA, and
//   country from requestinfo.
// • Oxford commas, two spaces after periods.
//
//------------------------------------------------------------------------------

package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/guestlist/internal/acl"
	"github.com/yanizio/guestlist/internal/admin"
	ctxauth "github.com/yanizio/guestlist/internal/auth"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/requestinfo"
	"github.com/yanizio/guestlist/internal/session"
	"github.com/yanizio/guestlist/internal/validate"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Sessions is the slice of *session.Manager this component uses.
type Sessions interface {
	Begin(ctx context.Context, code string) (session.Session, error)
	Revoke(ctx context.Context, token string) error
	Describe(ctx context.Context, s session.Session) (session.View, error)
}

// Admins is the slice of *admin.Service this component uses.
type Admins interface {
	Login(ctx context.Context, token, username, password string) (admin.Admin, error)
}

// Component encapsulates the auth endpoints.
type Component struct {
	sessions Sessions
	admins   Admins
	cookies  session.Cookies
}

// New wires the auth component.
func New(sessions Sessions, admins Admins, cookies session.Cookies) *Component {
	return &Component{sessions: sessions, admins: admins, cookies: cookies}
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Prefix is the mount point.
func (c *Component) Prefix() string { return "/auth" }

// Routes builds the sub-router.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/code", c.handleCode)
	r.Post("/logout", c.handleLogout)
	r.With(acl.Require(session.KindAdminPending)).Post("/admin/login", c.handleAdminLogin)
	r.With(acl.RequireAny()).Get("/session", c.handleSession)
	return r
}

/*──────────────────────────── Payloads ─────────────────────────────────────*/

type codeRequest struct {
	Code string `json:"code" validate:"required,max=50"`
}

type codeResponse struct {
	SessionType session.Kind `json:"session_type"`
	GuestName   string       `json:"guest_name,omitempty"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Username string `json:"username"`
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleCode(w http.ResponseWriter, r *http.Request) {
	var in codeRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx).With(requestinfo.FromContext(ctx).Fields()...)

	s, err := c.sessions.Begin(ctx, in.Code)
	if err != nil {
		log.Infow("invite code rejected", "error", err)
		httpx.WriteError(w, r, err)
		return
	}

	// Replace any session the browser already carried.
	if old := session.TokenFromRequest(r); old != "" && old != s.Token {
		if err := c.sessions.Revoke(ctx, old); err != nil {
			log.Warnw("revoke previous session", "error", err)
		}
	}

	resp := codeResponse{SessionType: s.Kind()}
	if s.Kind() == session.KindGuest {
		v, err := c.sessions.Describe(ctx, s)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		resp.GuestName = v.GuestName
	}

	c.cookies.Set(w, s)
	log.Infow("invite code accepted", "session_id", s.ID, "session_type", s.Kind())
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (c *Component) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx).With(requestinfo.FromContext(ctx).Fields()...)
	token := session.TokenFromRequest(r)

	a, err := c.admins.Login(ctx, token, in.Username, in.Password)
	if err != nil {
		log.Infow("admin login attempt failed", "username", in.Username)
		httpx.WriteError(w, r, err)
		return
	}
	log.Infow("admin login attempt succeeded", "admin_id", a.ID)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{Username: a.Username})
}

func (c *Component) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := session.TokenFromRequest(r); token != "" {
		if err := c.sessions.Revoke(r.Context(), token); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
	}
	c.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (c *Component) handleSession(w http.ResponseWriter, r *http.Request) {
	s, _ := ctxauth.SessionFrom(r.Context())
	v, err := c.sessions.Describe(r.Context(), s)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}
