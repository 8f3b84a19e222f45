// Package enquiryform hosts the per-visitor enquiry submission flow: the
// form -> submitting -> submitted cycle with its timed return to the form.
package enquiryform

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/webcraft/backend/internal/model"
)

// State is the display state of a Flow.
type State string

const (
	StateForm       State = "form"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

// DefaultRevertDelay is how long the confirmation stays up.
const DefaultRevertDelay = 5 * time.Second

// FailureNotice is shown after a failed submission.
const FailureNotice = "There was an error submitting your enquiry. Please try again."

var (
	ErrSubmitInProgress  = errors.New("submit in progress")
	ErrConfirmationShown = errors.New("confirmation still shown")
	ErrClosed            = errors.New("form closed")
)

// Submitter stores a validated draft.
type Submitter interface {
	Submit(ctx context.Context, draft model.EnquiryDraft) (*model.Enquiry, error)
}

// Scheduler runs fn once after d. It returns nothing: a scheduled revert is
// never cancelled.
type Scheduler func(d time.Duration, fn func())

func afterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// View is a point-in-time snapshot of a Flow.
type View struct {
	State  State              `json:"state"`
	Draft  model.EnquiryDraft `json:"draft"`
	Notice string             `json:"notice,omitempty"`
}

// Flow is one visitor's submission form.
type Flow struct {
	submitter Submitter
	schedule  Scheduler
	delay     time.Duration

	mu     sync.Mutex
	state  State
	draft  model.EnquiryDraft
	notice string
	closed bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithScheduler replaces time.AfterFunc as the revert timer.
func WithScheduler(s Scheduler) Option {
	return func(f *Flow) { f.schedule = s }
}

// WithRevertDelay sets how long the confirmation is shown.
func WithRevertDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.delay = d
		}
	}
}

// NewFlow creates a Flow in the form state with an empty draft.
func NewFlow(submitter Submitter, opts ...Option) *Flow {
	f := &Flow{
		submitter: submitter,
		schedule:  afterFunc,
		delay:     DefaultRevertDelay,
		state:     StateForm,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit validates draft and hands it to the Submitter. While the call is in
// flight the flow is submitting and further calls fail with
// ErrSubmitInProgress. On success the draft is cleared and the confirmation
// is shown until the revert delay elapses. On failure the draft is kept and
// a generic notice is set.
func (f *Flow) Submit(ctx context.Context, draft model.EnquiryDraft) (*model.Enquiry, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return nil, ErrClosed
	case f.state == StateSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	case f.state == StateSubmitted:
		f.mu.Unlock()
		return nil, ErrConfirmationShown
	}
	f.draft = draft
	f.notice = ""
	if err := draft.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	e, err := f.submitter.Submit(ctx, draft)

	f.mu.Lock()
	if err != nil {
		f.state = StateForm
		f.notice = FailureNotice
		f.mu.Unlock()
		slog.ErrorContext(ctx, "enquiry submission failed", "error", err)
		return nil, err
	}
	f.state = StateSubmitted
	f.draft = model.EnquiryDraft{}
	f.mu.Unlock()

	f.schedule(f.delay, f.revert)
	return e, nil
}

func (f *Flow) revert() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.state == StateSubmitted {
		f.state = StateForm
	}
}

// Snapshot returns the current view.
func (f *Flow) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return View{State: f.state, Draft: f.draft, Notice: f.notice}
}

// RevertDelay reports how long the confirmation is shown.
func (f *Flow) RevertDelay() time.Duration {
	return f.delay
}

// Close unmounts the flow. Pending reverts become no-ops and Submit fails
// with ErrClosed.
func (f *Flow) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}
