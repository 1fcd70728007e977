package middlewares

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout is the request timeout used when none is given.
const DefaultTimeout = 30 * time.Second

// Timeout bounds the request context. Handlers observe the deadline through
// r.Context(); nothing is written on their behalf.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
