package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/internal/repository"
	"github.com/webcraft/backend/pkg/auth"
)

// AuthServiceImpl implements AuthService on top of the admin repository and
// SessionService, and publishes every sign-in/sign-out on events.
type AuthServiceImpl struct {
	admins   repository.AdminRepository
	sessions *SessionService
	events   *auth.SessionEvents
}

// NewAuthService creates an AuthServiceImpl. events may be nil.
func NewAuthService(admins repository.AdminRepository, sessions *SessionService, events *auth.SessionEvents) *AuthServiceImpl {
	if events == nil {
		events = auth.NewSessionEvents()
	}
	return &AuthServiceImpl{admins: admins, sessions: sessions, events: events}
}

var _ AuthService = (*AuthServiceImpl)(nil)

func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.InfoContext(ctx, "sign-in rejected", "reason", "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}

	if err := auth.VerifyPassword(password, admin.PasswordHash); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			slog.ErrorContext(ctx, "stored password hash unreadable", "admin_id", admin.ID, "error", err)
		}
		slog.InfoContext(ctx, "sign-in rejected", "reason", "bad_password", "admin_id", admin.ID)
		return nil, ErrInvalidCredentials
	}

	token, p, err := s.sessions.CreateSession(ctx, admin)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "admin signed in", "admin_id", admin.ID)
	s.events.Publish(auth.SessionEvent{Kind: auth.SignedIn, Principal: *p})
	return &SignInResult{Token: token, Principal: p}, nil
}

func (s *AuthServiceImpl) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	p, err := s.sessions.DeleteSession(ctx, token)
	if errors.Is(err, auth.ErrInvalidToken) {
		return nil
	}
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "admin signed out", "admin_id", p.AdminID)
	s.events.Publish(auth.SessionEvent{Kind: auth.SignedOut, Principal: *p})
	return nil
}

func (s *AuthServiceImpl) SignOutEverywhere(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	p, err := s.sessions.ValidateSession(ctx, token)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.sessions.DeleteAllSessions(ctx, p.AdminID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	slog.InfoContext(ctx, "admin signed out everywhere", "admin_id", p.AdminID)
	// No session id: every session of the admin is gone.
	s.events.Publish(auth.SessionEvent{Kind: auth.SignedOut, Principal: auth.Principal{AdminID: p.AdminID, Email: p.Email}})
	return nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, token string) (*auth.Principal, error) {
	return s.sessions.ValidateSession(ctx, token)
}

func (s *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	_, err := s.admins.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}
	if password == "" {
		return fmt.Errorf("admin %s does not exist and no password was provided", email)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	admin := &model.Admin{Email: email, PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	slog.InfoContext(ctx, "admin account created", "admin_id", admin.ID)
	return nil
}
