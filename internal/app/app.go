// internal/app/app.go
//
// Service graph.
//
// Context
// -------
// cmd/web, cmd/seed, and the end-to-end tests all need the same wiring:
// one store per table family, one service per domain, and the components
// that expose them.  New builds that graph from a *core.Env; Handler turns
// it into the root http.Handler.
//
// Notes
// -----
// • Services hold env.DB directly; no global lookups happen per request.
// • Oxford commas, two spaces after periods.

package app

import (
	"net/http"

	adminc "github.com/yanizio/guestlist/components/admin"
	authc "github.com/yanizio/guestlist/components/auth"
	eventsc "github.com/yanizio/guestlist/components/events"
	rsvpc "github.com/yanizio/guestlist/components/rsvp"
	"github.com/yanizio/guestlist/internal/admin"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/config"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/event"
	"github.com/yanizio/guestlist/internal/guest"
	"github.com/yanizio/guestlist/internal/invite"
	"github.com/yanizio/guestlist/internal/routing"
	"github.com/yanizio/guestlist/internal/rsvp"
	"github.com/yanizio/guestlist/internal/session"
	"github.com/yanizio/guestlist/internal/stats"
)

// App bundles every domain service.
type App struct {
	Env *core.Env

	Invites  *invite.Service
	Sessions *session.Manager
	Guests   *guest.Service
	Admins   *admin.Service
	Rsvps    *rsvp.Service
	Events   *event.Service
	Stats    *stats.Service
}

// New wires the service graph.  env.Config may be nil in tests; defaults
// then apply everywhere.
func New(env *core.Env) *App {
	cfg := env.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	now := env.Clock()
	db := env.DB

	a := &App{Env: env}
	a.Invites = invite.NewService(db, invite.NewStore(), cfg.Invite.CodeLength, now)
	a.Sessions = session.NewManager(db, session.NewStore(), a.Invites, cfg.Session.TTL, now)
	a.Guests = guest.NewService(db, guest.NewStore(), a.Invites, now)
	a.Admins = admin.NewService(db, admin.NewStore(), a.Sessions, admin.Options{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		BcryptCost:        cfg.Auth.BcryptCost,
	}, now)
	a.Rsvps = rsvp.NewService(db, rsvp.NewStore(), now)
	a.Events = event.NewService(db, event.NewStore(), now)
	a.Stats = stats.NewService(db, stats.NewStore(), cfg.Dashboard.RecentLimit)
	return a
}

// Components returns the HTTP surfaces backed by a.
func (a *App) Components() []component.Component {
	secure := a.Env.Config == nil || !a.Env.Config.HTTP.InsecureCookies
	return []component.Component{
		authc.New(a.Sessions, a.Admins, session.Cookies{Secure: secure}),
		rsvpc.New(a.Rsvps),
		eventsc.New(a.Events),
		adminc.New(adminc.Deps{
			Guests:    a.Guests,
			Codes:     a.Invites,
			Rsvps:     a.Rsvps,
			Events:    a.Events,
			Stats:     a.Stats,
			Passwords: a.Admins,
		}),
	}
}

// Handler builds the root router.
func (a *App) Handler() http.Handler {
	opts := routing.Options{
		Log:        a.Env.Log,
		Sessions:   a.Sessions,
		Components: a.Components(),
	}
	if a.Env.DB != nil {
		opts.Health = a.Env.DB.PingContext
	}
	if cfg := a.Env.Config; cfg != nil {
		opts.ForceHTTPS = cfg.HTTP.ForceHTTPS
		opts.RequestTimeout = cfg.HTTP.RequestTimeout
	}
	return routing.New(opts)
}
