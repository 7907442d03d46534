package api

import (
	"context"
	"net/http"
	"time"
)

// ContextKey keys values the middleware chain attaches to a request.
type ContextKey string

const (
	IdentityKey  ContextKey = "identity"
	DTOKey       ContextKey = "dto"
	RequestIDKey ContextKey = "requestID"
)

// Identity is the authenticated caller. It is absent on anonymous requests.
type Identity struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom returns the caller's identity, if the request carried a valid token.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// DTO returns the body ValidateDTO decoded for this route.
func DTO[T any](r *http.Request) T {
	dto, _ := r.Context().Value(DTOKey).(T)
	return dto
}

// RequestID returns the ID assigned by the RequestID middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
