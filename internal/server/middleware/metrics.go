package middleware

import (
	"net/http"
	"time"

	"github.com/alanyoungcy/predicthub/internal/metrics"
)

// Metrics records request counts and latency labelled by the matched route
// pattern. The pattern is set by the mux, so this must wrap it.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)
			m.ObserveHTTP(r.Method, r.Pattern, rw.statusCode, time.Since(start))
		})
	}
}
