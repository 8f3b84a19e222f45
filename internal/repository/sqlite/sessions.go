package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/internal/repository"
)

type sessionsRepo struct {
	s *Store
}

func (r *sessionsRepo) Create(ctx context.Context, sess *model.Session) error {
	_, err := r.s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, admin_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.AdminID, formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt))
	return err
}

func (r *sessionsRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var (
		sess                 model.Session
		createdAt, expiresAt string
	)
	err := r.s.db.QueryRowContext(ctx,
		`SELECT id, admin_id, created_at, expires_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.AdminID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sess.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if sess.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionsRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteByAdminID(ctx context.Context, adminID string) error {
	_, err := r.s.db.ExecContext(ctx, `DELETE FROM sessions WHERE admin_id = ?`, adminID)
	return err
}
