package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/internal/repository"
)

// enquiryServiceImpl is the production implementation of EnquiryService.
type enquiryServiceImpl struct {
	repo repository.EnquiryRepository
}

// NewEnquiryService creates an EnquiryService backed by the given repository.
func NewEnquiryService(repo repository.EnquiryRepository) EnquiryService {
	return &enquiryServiceImpl{repo: repo}
}

// Submit rejects invalid drafts before touching the store. A blank message is
// stored as NULL. Store failures are returned unchanged for the caller to
// log; nothing is retried.
func (s *enquiryServiceImpl) Submit(ctx context.Context, draft model.EnquiryDraft) (*model.Enquiry, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	e := draft.ToEnquiry()
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("insert enquiry: %w", err)
	}
	slog.InfoContext(ctx, "enquiry submitted",
		"enquiry_id", e.ID,
		"website_type", e.WebsiteType,
		"has_message", e.Message != nil,
	)
	return e, nil
}

func (s *enquiryServiceImpl) List(ctx context.Context) ([]*model.Enquiry, error) {
	enquiries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return enquiries, nil
}
