package middleware

import (
	"fmt"
	"net/http"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

// Recoverer converts downstream panics into typed internal errors so
// a single bad request cannot take the process down.
func Recoverer(logg *logger.Logger, writer *responses.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					err := errors.New(errors.CodeInternal, fmt.Sprintf("panic: %v", recovered))
					logg.Error(r.Context(), "recovered from panic", err)
					writer.Err(r.Context(), w, err)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
