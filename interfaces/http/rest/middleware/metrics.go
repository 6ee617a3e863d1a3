package middleware

import (
	"net/http"
	"time"

	"moodi-backend/pkg/observability"

	"github.com/go-chi/chi/v5/middleware"
)

// Metrics records request counts and latencies by route pattern, which keeps
// label cardinality bounded regardless of the ids in the path.
func Metrics(metrics *observability.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveHTTP(r.Method, routePattern(r), status, time.Since(start))
		})
	}
}
