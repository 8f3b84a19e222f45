package service

import (
	"context"

	"github.com/webcraft/backend/internal/model"
)

// EnquiryService defines the business logic for enquiry submissions and the
// admin listing.
type EnquiryService interface {
	// Submit validates the draft and inserts exactly one enquiry. The returned
	// record carries the ID and CreatedAt assigned by the store.
	Submit(ctx context.Context, draft model.EnquiryDraft) (*model.Enquiry, error)

	// List returns every enquiry, newest first.
	List(ctx context.Context) ([]*model.Enquiry, error)
}
