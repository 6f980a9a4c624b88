package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/courierlabs/robocourier-backend/pkg/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics observes request counts and latencies per route pattern.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}

			m.HTTPRequestsTotal.
				WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
				Inc()
			m.HTTPRequestDuration.
				WithLabelValues(route, r.Method).
				Observe(time.Since(start).Seconds())
		})
	}
}
