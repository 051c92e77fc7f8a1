package httpx

import (
	"context"
	"net/http"

	"littlelibrary/internal/platform/identity"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "requestID"
)

// IdentityFrom retrieves the authenticated caller from the request context.
func IdentityFrom(r *http.Request) (identity.Identity, bool) {
	id, ok := r.Context().Value(identityKey).(identity.Identity)
	return id, ok
}

// UserIDFrom retrieves the authenticated caller's uid, or "" when unauthenticated.
func UserIDFrom(r *http.Request) string {
	if id, ok := IdentityFrom(r); ok {
		return id.UID
	}
	return ""
}

// ContextWithIdentity returns a new context carrying the authenticated caller.
func ContextWithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
