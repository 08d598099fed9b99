package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/klabast/wb-services/abfuhr-termine/internal/metrics"
)

// Prometheus records request duration and count per route pattern.
// Mount it inside the chi router so the matched pattern is known.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if r.URL.Path == "/metrics" {
			return
		}

		// patterns keep label cardinality bounded (/properties/{name})
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.RecordRequest(r.Method, route, sw.status, time.Since(start).Seconds())
	})
}
