// internal/routing/router.go
//
// Root router.
//
// Context
// -------
// Builds the single chi router the HTTP server runs: the shared middleware
// stack, the two operational endpoints, and every Component mounted at its
// prefix.
//
// Workflow
// --------
//   1. RequestID and RealIP run first so later layers can log both.
//   2. RequestLogger installs the request-scoped zap logger.
//   3. Recoverer, Security, ForceHTTPS, and Instrument wrap the rest.
//   4. Timeout bounds the request context every store call receives.
//   5. requestinfo.Enrich parses UA and GeoIP once per request.
//   6. acl.Authenticate attaches the live session, if any.
//
// Notes
// -----
// • /health and /metrics bypass every session gate.
// • Oxford commas, two spaces after periods.

package routing

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/guestlist/internal/acl"
	"github.com/yanizio/guestlist/internal/component"
	"github.com/yanizio/guestlist/internal/httpx"
	"github.com/yanizio/guestlist/internal/metrics"
	"github.com/yanizio/guestlist/internal/middleware"
	"github.com/yanizio/guestlist/internal/requestinfo"
)

// DefaultRequestTimeout applies when Options.RequestTimeout is zero.
const DefaultRequestTimeout = 10 * time.Second

// Options configures the root router.
type Options struct {
	Log            *zap.SugaredLogger
	Sessions       acl.Lookup
	ForceHTTPS     bool
	RequestTimeout time.Duration

	// Health reports storage reachability for GET /health.  Nil means
	// always healthy.
	Health func(ctx context.Context) error

	Components []component.Component
}

type healthResponse struct {
	Status string `json:"status"`
}

// New builds the root handler.
func New(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(opts.ForceHTTPS))
	r.Use(metrics.Instrument)
	r.Use(chimw.Timeout(timeout))
	r.Use(requestinfo.Enrich)
	r.Use(acl.Authenticate(opts.Sessions))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(req.Context()); err != nil {
				log.Errorw("health check failed", "error", err)
				httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	component.Mount(r, log, opts.Components...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusNotFound, httpx.ErrorBody{Error: "Not found", Code: "NOT_FOUND"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, httpx.ErrorBody{Error: "Method not allowed"})
	})
	return r
}
