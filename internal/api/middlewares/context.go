package middlewares

import (
	"context"
	"net/http"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
)

// WithUserID marks ctx as authenticated for userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFrom returns the id set by the auth gate.
func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

// GetRequestID prefers the id stored by RequestID and falls back to the
// header for handlers mounted outside the chain.
func GetRequestID(r *http.Request) string {
	if v, _ := r.Context().Value(requestIDKey).(string); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}
