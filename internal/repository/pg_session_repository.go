package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/webcraft/backend/internal/model"
)

type pgSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSessionRepository returns a PostgreSQL-backed SessionRepository.
func NewPgSessionRepository(pool *pgxpool.Pool) SessionRepository {
	return &pgSessionRepository{pool: pool}
}

func (r *pgSessionRepository) Create(ctx context.Context, s *model.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, admin_id, created_at, expires_at) VALUES ($1, $2::uuid, $3, $4)`,
		s.ID, s.AdminID, s.CreatedAt, s.ExpiresAt)
	return err
}

func (r *pgSessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, admin_id::text, created_at, expires_at FROM sessions WHERE id = $1`,
		id).Scan(&s.ID, &s.AdminID, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgSessionRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *pgSessionRepository) DeleteByAdminID(ctx context.Context, adminID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE admin_id = $1::uuid`, adminID)
	return err
}
