package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestRecorder receives one call per finished request.
// metrics.Collector implements it.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, elapsed time.Duration)
}

// unmatchedRoute labels requests no route matched (404s, scanners).
const unmatchedRoute = "unmatched"

// Metrics returns middleware that reports every request to rec, labelled by
// the chi route pattern rather than the raw URL.
//
// ROUTE PATTERN VS PATH:
// /api/kudos/1/hide and /api/kudos/2/hide are the same route. Using the raw
// path as a label would create a new time series per kudo id.
//
// The pattern is only known after routing, so it is read AFTER next runs.
func Metrics(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			rec.RecordRequest(r.Method, route, wrapped.statusCode, time.Since(start))
		})
	}
}
