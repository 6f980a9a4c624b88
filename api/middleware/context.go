package middleware

import "context"

type contextKey string

const (
	usernameKey  contextKey = "username"
	requestIDKey contextKey = "request_id"
)

// Username returns the authenticated account name, empty on
// unauthenticated routes.
func Username(ctx context.Context) string {
	if username, ok := ctx.Value(usernameKey).(string); ok {
		return username
	}
	return ""
}

// WithUsername attaches the authenticated account name. Exposed for
// handler tests that bypass the auth middleware.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// RequestIDFrom returns the id attached by the RequestID middleware.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
