package dashboard

import (
	"time"

	"github.com/webcraft/backend/internal/model"
)

// NoMessage is displayed for an enquiry without a message.
const NoMessage = "No message"

// DateLayout formats the submitted-at column.
const DateLayout = "Jan 2, 2006, 03:04 PM"

// Row is one rendered line of the enquiry table.
type Row struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	WebsiteType string `json:"website_type"`
	Message     string `json:"message"`
	HasMessage  bool   `json:"has_message"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

// Rows renders enquiries in their given order, with dates in loc.
func Rows(enquiries []*model.Enquiry, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, 0, len(enquiries))
	for _, e := range enquiries {
		r := Row{
			ID:          e.ID,
			Name:        e.Name,
			Email:       e.Email,
			WebsiteType: e.WebsiteType,
			Message:     NoMessage,
			HasMessage:  e.HasMessage(),
			Date:        e.CreatedAt.In(loc).Format(DateLayout),
			CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if r.HasMessage {
			r.Message = *e.Message
		}
		rows = append(rows, r)
	}
	return rows
}
