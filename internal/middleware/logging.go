// internal/middleware/logging.go
//
// Request logger.
//
// Context
// -------
// Builds a child of the base logger carrying request_id, method, and path,
// stores it in the request context (logger.WithContext), and writes one
// INFO line per request with status, bytes, and latency.  Must run after
// chi's RequestID middleware so the id is available.
//
// Notes
// -----
// • 5xx responses log at ERROR, 4xx at WARN, everything else at INFO.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/guestlist/internal/logger"
)

// RequestLogger returns a middleware bound to base.
func RequestLogger(base *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base.With(
				"request_id", chimw.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case status >= 500:
				l.Errorw("request", fields...)
			case status >= 400:
				l.Warnw("request", fields...)
			default:
				l.Infow("request", fields...)
			}
		})
	}
}
