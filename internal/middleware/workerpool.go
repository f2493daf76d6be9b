package middleware

import (
	"net/http"

	"golang.org/x/sync/semaphore"

	"github.com/Strob0t/lightlogger/internal/adapter/http/envelope"
)

// WorkerPool returns middleware that lets at most n requests execute at
// once. Waiting requests give up when their context ends and receive 503.
// n < 1 is treated as 1.
func WorkerPool(n int) Middleware {
	if n < 1 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sem.Acquire(r.Context(), 1); err != nil {
				envelope.Error(w, http.StatusServiceUnavailable, "Service unavailable")
				return
			}
			defer sem.Release(1)
			next.ServeHTTP(w, r)
		})
	}
}
