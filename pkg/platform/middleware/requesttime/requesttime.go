// Package requesttime pins one "now" per request. Session issue time,
// assertion expiry and usage log timestamps read it from the context.
package requesttime

import (
	"net/http"
	"time"

	"automatik/pkg/requestcontext"
)

// Middleware stamps each request with the wall clock in UTC.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock stamps requests with clock() instead of the wall clock.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock().UTC())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
