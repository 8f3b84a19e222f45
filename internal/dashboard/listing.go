// Package dashboard builds the admin dashboard view: the enquiry listing,
// its summary counts and the table rows.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/webcraft/backend/internal/model"
)

// LoadErrorMessage is shown in place of the table when the fetch fails.
const LoadErrorMessage = "Failed to load enquiries"

// Lister returns all enquiries, newest first.
type Lister interface {
	List(ctx context.Context) ([]*model.Enquiry, error)
}

// Listing is a point-in-time snapshot of the enquiry table. It is loading
// until the first Load settles. Overlapping loads are not ordered: whichever
// settles last wins.
type Listing struct {
	lister Lister

	mu        sync.Mutex
	loading   bool
	enquiries []*model.Enquiry
	errMsg    string
}

// NewListing creates a Listing that is loading until Load returns.
func NewListing(lister Lister) *Listing {
	return &Listing{lister: lister, loading: true}
}

// Load fetches the enquiries. A failure is recorded as an error message with
// an empty set; it is not returned.
func (l *Listing) Load(ctx context.Context) {
	enquiries, err := l.lister.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "fetch enquiries failed", "error", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.enquiries = nil
		l.errMsg = LoadErrorMessage
		return
	}
	l.enquiries = enquiries
	l.errMsg = ""
}

func (l *Listing) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the load error message, or "" after a successful load.
func (l *Listing) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errMsg
}

// Enquiries returns the loaded set. It is empty while loading or after a
// failed load.
func (l *Listing) Enquiries() []*model.Enquiry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enquiries
}
