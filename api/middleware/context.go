package middleware

import "context"

type contextKey string

const (
	ctxOpenID   contextKey = "open_id"
	ctxUserID   contextKey = "user_id"
	ctxAccessID contextKey = "access_id"
)

// OpenIDFromContext returns the caller identity every team operation is keyed on.
func OpenIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxOpenID)
}

// UserIDFromContext returns the internal user id when the caller presented a token.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

// AccessIDFromContext returns the session id (token jti) of the caller.
func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

// WithOpenID injects the caller identity into the context.
func WithOpenID(ctx context.Context, openID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOpenID, openID)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
