package auth

import (
	"context"
	"time"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal identifies the signed-in admin for the current request.
type Principal struct {
	SessionID string    `json:"-"`
	AdminID   string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WithPrincipal stores p in the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the admin attached by the session middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}
