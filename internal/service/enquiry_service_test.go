package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webcraft/backend/internal/model"
)

// ---------------------------------------------------------------------------
// mockEnquiryRepository - in-memory stub for testing
// ---------------------------------------------------------------------------

type mockEnquiryRepository struct {
	insertFunc  func(ctx context.Context, e *model.Enquiry) error
	listAllFunc func(ctx context.Context) ([]*model.Enquiry, error)
	inserted    []*model.Enquiry
}

func (m *mockEnquiryRepository) Insert(ctx context.Context, e *model.Enquiry) error {
	m.inserted = append(m.inserted, e)
	if m.insertFunc != nil {
		return m.insertFunc(ctx, e)
	}
	e.ID = "generated-id"
	e.CreatedAt = time.Now()
	return nil
}

func (m *mockEnquiryRepository) ListAll(ctx context.Context) ([]*model.Enquiry, error) {
	if m.listAllFunc != nil {
		return m.listAllFunc(ctx)
	}
	return nil, nil
}

func validDraft() model.EnquiryDraft {
	return model.EnquiryDraft{
		Name:        "Alice",
		Email:       "alice@example.com",
		WebsiteType: "Portfolio Website",
		Message:     "Hello!",
	}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestEnquiryService_Submit_InsertsOnce(t *testing.T) {
	repo := &mockEnquiryRepository{}
	svc := NewEnquiryService(repo)

	got, err := svc.Submit(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected exactly one insert, got %d", len(repo.inserted))
	}
	if got.ID != "generated-id" {
		t.Errorf("expected store-assigned id, got %q", got.ID)
	}
	if got.Message == nil || *got.Message != "Hello!" {
		t.Errorf("expected message Hello!, got %v", got.Message)
	}
}

func TestEnquiryService_Submit_BlankMessageBecomesNil(t *testing.T) {
	for _, msg := range []string{"", " ", "\n\t  "} {
		repo := &mockEnquiryRepository{}
		svc := NewEnquiryService(repo)

		d := validDraft()
		d.Message = msg
		if _, err := svc.Submit(context.Background(), d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.inserted[0].Message != nil {
			t.Errorf("message %q: expected nil, got %q", msg, *repo.inserted[0].Message)
		}
	}
}

func TestEnquiryService_Submit_MessageKeptVerbatim(t *testing.T) {
	repo := &mockEnquiryRepository{}
	svc := NewEnquiryService(repo)

	d := validDraft()
	d.Message = "  need a shop  \n"
	if _, err := svc.Submit(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *repo.inserted[0].Message; got != d.Message {
		t.Errorf("expected message kept verbatim, got %q", got)
	}
}

func TestEnquiryService_Submit_ValidationErrorSkipsStore(t *testing.T) {
	cases := map[string]func(*model.EnquiryDraft){
		"name_required":         func(d *model.EnquiryDraft) { d.Name = "  " },
		"email_required":        func(d *model.EnquiryDraft) { d.Email = "" },
		"email_invalid":         func(d *model.EnquiryDraft) { d.Email = "not-an-email" },
		"website_type_required": func(d *model.EnquiryDraft) { d.WebsiteType = "" },
		"website_type_invalid":  func(d *model.EnquiryDraft) { d.WebsiteType = "Spaceship" },
	}
	for code, mutate := range cases {
		repo := &mockEnquiryRepository{}
		svc := NewEnquiryService(repo)

		d := validDraft()
		mutate(&d)
		_, err := svc.Submit(context.Background(), d)

		var ve *model.ValidationError
		if !errors.As(err, &ve) || ve.Code != code {
			t.Errorf("%s: expected validation error, got %v", code, err)
		}
		if len(repo.inserted) != 0 {
			t.Errorf("%s: store must not be called", code)
		}
	}
}

func TestEnquiryService_Submit_RepositoryError(t *testing.T) {
	dbErr := errors.New("db write failed")
	repo := &mockEnquiryRepository{
		insertFunc: func(ctx context.Context, e *model.Enquiry) error { return dbErr },
	}
	svc := NewEnquiryService(repo)

	_, err := svc.Submit(context.Background(), validDraft())
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped repository error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func TestEnquiryService_List_ReturnsRepositoryOrder(t *testing.T) {
	want := []*model.Enquiry{{ID: "2"}, {ID: "1"}}
	repo := &mockEnquiryRepository{
		listAllFunc: func(ctx context.Context) ([]*model.Enquiry, error) { return want, nil },
	}
	svc := NewEnquiryService(repo)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestEnquiryService_List_RepositoryError(t *testing.T) {
	repo := &mockEnquiryRepository{
		listAllFunc: func(ctx context.Context) ([]*model.Enquiry, error) { return nil, errors.New("boom") },
	}
	svc := NewEnquiryService(repo)

	if _, err := svc.List(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}
