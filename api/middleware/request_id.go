package middleware

import (
	"net/http"

	"github.com/courierlabs/robocourier-backend/pkg/logger"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID attaches a request id to the context and the response,
// honoring an id supplied by an upstream proxy.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := withRequestID(r.Context(), id)
			ctx = logg.WithRequestID(ctx, id)

			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
