package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/internal/repository"
	"github.com/webcraft/backend/pkg/auth"
	"github.com/webcraft/backend/pkg/idx"
)

// ErrSessionExpired is returned for a session whose row outlived its expiry.
var ErrSessionExpired = errors.New("session expired")

// DefaultSessionTTL is used when NewSessionService is given a zero TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionService manages DB-backed admin sessions referenced by signed
// cookie tokens. Implements auth.SessionValidator.
type SessionService struct {
	repo   repository.SessionRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(repo repository.SessionRepository, secret []byte, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

var _ auth.SessionValidator = (*SessionService)(nil)

// CreateSession stores a new session row for admin and returns the signed
// cookie token for it.
func (s *SessionService) CreateSession(ctx context.Context, admin *model.Admin) (string, *auth.Principal, error) {
	now := s.now().UTC()
	session := &model.Session{
		ID:        idx.NewAt(now).String(),
		AdminID:   admin.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	p := &auth.Principal{
		SessionID: session.ID,
		AdminID:   admin.ID,
		Email:     admin.Email,
		ExpiresAt: session.ExpiresAt,
	}
	token, err := auth.CreateSessionToken(*p, s.secret)
	if err != nil {
		_ = s.repo.DeleteByID(ctx, session.ID)
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	slog.DebugContext(ctx, "session created", "session_id", session.ID, "admin_id", admin.ID, "expires_at", session.ExpiresAt)
	return token, p, nil
}

// ValidateSession checks the token signature and that its session row still
// exists and has not expired.
func (s *SessionService) ValidateSession(ctx context.Context, token string) (*auth.Principal, error) {
	p, err := auth.ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, err
	}

	session, err := s.repo.FindByID(ctx, p.SessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session.AdminID != p.AdminID {
		return nil, auth.ErrInvalidToken
	}
	if s.now().After(session.ExpiresAt) {
		_ = s.repo.DeleteByID(ctx, session.ID)
		return nil, ErrSessionExpired
	}
	p.ExpiresAt = session.ExpiresAt
	return p, nil
}

// DeleteSession removes the session a token refers to (sign-out) and returns
// whose session it was. Tokens that fail verification delete nothing.
func (s *SessionService) DeleteSession(ctx context.Context, token string) (*auth.Principal, error) {
	p, err := auth.ParseSessionToken(token, s.secret)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteByID(ctx, p.SessionID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return p, nil
}

// DeleteAllSessions removes all sessions of an admin (forced sign-out).
func (s *SessionService) DeleteAllSessions(ctx context.Context, adminID string) error {
	return s.repo.DeleteByAdminID(ctx, adminID)
}
