package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/courierlabs/robocourier-backend/api/responses"
	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

// BearerResolver maps an issued bearer onto its username.
type BearerResolver interface {
	Resolve(ctx context.Context, bearer string) (string, error)
}

// RequireBearer guards account-facing routes. The bearer travels in
// the Authorization header, with or without the "Bearer " prefix.
func RequireBearer(resolver BearerResolver, logg *logger.Logger, writer *responses.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := BearerFromHeader(r)
			if bearer == "" {
				writer.Err(r.Context(), w, errors.New(errors.CodeUnauthorized, "bearer is required"))
				return
			}

			username, err := resolver.Resolve(r.Context(), bearer)
			if err != nil {
				writer.Err(r.Context(), w, err)
				return
			}
			if username == "" {
				writer.Err(r.Context(), w, errors.New(errors.CodeUnauthorized, "invalid bearer"))
				return
			}

			ctx := WithUsername(r.Context(), username)
			ctx = logg.WithUsername(ctx, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerFromHeader extracts the bearer from the Authorization header,
// with or without the "Bearer " prefix.
func BearerFromHeader(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
