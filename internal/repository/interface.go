package repository

import (
	"context"

	"github.com/webcraft/backend/internal/model"
)

// DB checks that the backing database is reachable.
type DB interface {
	Ping(ctx context.Context) error
}

// AdminRepository persists the dashboard admin account.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	// Create inserts a and fills a.ID and a.CreatedAt.
	Create(ctx context.Context, a *model.Admin) error
}
