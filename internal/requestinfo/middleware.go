// internal/requestinfo/middleware.go
//
// Enrich parses the caller fingerprint once per request.  It runs after
// chi's RealIP, so r.RemoteAddr already holds the forwarded client address
// when the service sits behind a proxy.

package requestinfo

import (
	"context"
	"net"
	"net/http"
)

// Enrich attaches *RequestInfo to the request context.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			Client:   parseClient(r.UserAgent(), r.Header.Get("Accept-Language")),
			Location: locate(clientIP(r)),
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP parses r.RemoteAddr with or without a port.
func clientIP(r *http.Request) net.IP {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}
