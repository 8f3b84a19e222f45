package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/webcraft/backend/internal/model"
)

type enquiriesRepo struct {
	s *Store
}

// Insert assigns the id and creation time, mirroring the Postgres column
// defaults.
func (r *enquiriesRepo) Insert(ctx context.Context, e *model.Enquiry) error {
	id := uuid.NewString()
	createdAt := r.s.now().UTC()

	var message sql.NullString
	if e.Message != nil {
		message = sql.NullString{String: *e.Message, Valid: true}
	}

	if _, err := r.s.db.ExecContext(ctx,
		`INSERT INTO enquiries (id, name, email, website_type, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, e.Name, e.Email, e.WebsiteType, message, formatTime(createdAt),
	); err != nil {
		return err
	}

	e.ID = id
	e.CreatedAt = createdAt
	return nil
}

func (r *enquiriesRepo) ListAll(ctx context.Context) ([]*model.Enquiry, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT id, name, email, website_type, message, created_at
		 FROM enquiries
		 ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enquiries []*model.Enquiry
	for rows.Next() {
		var (
			e         model.Enquiry
			message   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.WebsiteType, &message, &createdAt); err != nil {
			return nil, err
		}
		if message.Valid {
			msg := message.String
			e.Message = &msg
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		enquiries = append(enquiries, &e)
	}
	return enquiries, rows.Err()
}
