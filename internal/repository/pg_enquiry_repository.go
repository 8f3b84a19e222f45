package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/webcraft/backend/internal/model"
)

// EnquiryRepository defines the persistence interface for enquiries.
// It is defined here (in repository) to avoid an import cycle with service.
type EnquiryRepository interface {
	// Insert appends e and fills e.ID and e.CreatedAt from the store.
	Insert(ctx context.Context, e *model.Enquiry) error
	// ListAll returns every enquiry, newest first.
	ListAll(ctx context.Context) ([]*model.Enquiry, error)
}

// PgEnquiryRepository is the PostgreSQL implementation of EnquiryRepository.
type PgEnquiryRepository struct {
	pool *pgxpool.Pool
}

// NewPgEnquiryRepository creates a PgEnquiryRepository backed by the given pool.
func NewPgEnquiryRepository(pool *pgxpool.Pool) *PgEnquiryRepository {
	return &PgEnquiryRepository{pool: pool}
}

var _ EnquiryRepository = (*PgEnquiryRepository)(nil)

// Insert inserts a new enquiries row. id and created_at come from column
// defaults via the RETURNING clause; any values already set on e are ignored.
func (r *PgEnquiryRepository) Insert(ctx context.Context, e *model.Enquiry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO enquiries (name, email, website_type, message)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id::text, created_at`,
		e.Name, e.Email, e.WebsiteType, e.Message,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListAll returns all enquiries ordered by created_at descending.
func (r *PgEnquiryRepository) ListAll(ctx context.Context) ([]*model.Enquiry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, name, email, website_type, message, created_at
		 FROM enquiries
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enquiries []*model.Enquiry
	for rows.Next() {
		var e model.Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.WebsiteType, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		enquiries = append(enquiries, &e)
	}
	return enquiries, rows.Err()
}
