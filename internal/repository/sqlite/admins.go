package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/internal/repository"
)

type adminsRepo struct {
	s *Store
}

func (r *adminsRepo) scan(row *sql.Row) (*model.Admin, error) {
	var (
		a         model.Admin
		createdAt string
	)
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *adminsRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.scan(r.s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = ?`, email))
}

func (r *adminsRepo) Create(ctx context.Context, a *model.Admin) error {
	id := uuid.NewString()
	createdAt := r.s.now().UTC()
	if _, err := r.s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, a.Email, a.PasswordHash, formatTime(createdAt),
	); err != nil {
		return err
	}
	a.ID = id
	a.CreatedAt = createdAt
	return nil
}
