package middleware

import (
	"net/http"
	"time"
)

type httpObserver interface {
	Observe(method, route string, status int, elapsed time.Duration)
}

// Metrics records request counts and latency keyed by the chi route pattern.
func Metrics(observer httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(rec, r)
			observer.Observe(r.Method, routePattern(r), rec.code(), time.Since(start))
		})
	}
}
