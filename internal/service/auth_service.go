package service

import (
	"context"
	"errors"

	"github.com/webcraft/backend/pkg/auth"
)

// ErrInvalidCredentials is the sign-in failure shown verbatim on the sign-in
// page. It does not reveal whether the email exists.
var ErrInvalidCredentials = errors.New("Invalid login credentials")

// SignInResult carries the cookie token for a new session.
type SignInResult struct {
	Token     string
	Principal *auth.Principal
}

// AuthService is the authentication provider of the dashboard.
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	// SignOut ends the session of token. Unknown or invalid tokens are not an
	// error.
	SignOut(ctx context.Context, token string) error
	// SignOutEverywhere ends every session of the admin that token belongs
	// to. It is a no-op for tokens that are not a current session.
	SignOutEverywhere(ctx context.Context, token string) error
	// CurrentUser resolves a cookie token to the signed-in admin.
	CurrentUser(ctx context.Context, token string) (*auth.Principal, error)
	// EnsureAdmin creates the admin account if none exists for email.
	EnsureAdmin(ctx context.Context, email, password string) error
}
