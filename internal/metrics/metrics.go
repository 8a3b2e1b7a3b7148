// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Sessions created from invite codes, by session type.",
		}, []string{"type"})

	AdminLoginFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "admin_login_failures_total",
			Help: "Cumulative number of rejected admin logins.",
		})

	RSVPSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsvp_submissions_total",
			Help: "RSVP submissions, by result code (ok or the rejecting rule).",
		}, []string{"result"})

	InviteCodesRegeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "invite_codes_regenerated_total",
			Help: "Cumulative number of invite codes regenerated by admins.",
		})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern, and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		SessionsCreatedTotal,
		AdminLoginFailuresTotal,
		RSVPSubmissionsTotal,
		InviteCodesRegeneratedTotal,
		HTTPRequestDuration,
	)
}

// Instrument observes request latency labelled with the chi route pattern,
// so /admin/guests/{id} is one series rather than one per guest.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
