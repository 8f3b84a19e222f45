package dashboard

import (
	"math/rand/v2"
	"time"

	"github.com/webcraft/backend/internal/model"
)

// Summary holds the dashboard's aggregate counts.
type Summary struct {
	Total       int `json:"total"`
	ThisMonth   int `json:"this_month"`
	WithMessage int `json:"with_message"`
	// PageVisits is a placeholder estimate, not a measurement. It changes
	// between calls.
	PageVisits int `json:"page_visits"`
}

// Summarize derives the counts from enquiries. ThisMonth compares the month
// of the year only, in now's location.
func Summarize(enquiries []*model.Enquiry, now time.Time, visits VisitEstimator) Summary {
	s := Summary{Total: len(enquiries)}
	month := now.Month()
	for _, e := range enquiries {
		if e.CreatedAt.In(now.Location()).Month() == month {
			s.ThisMonth++
		}
		if e.HasMessage() {
			s.WithMessage++
		}
	}
	if visits != nil {
		s.PageVisits = visits.EstimateVisits(enquiries)
	}
	return s
}

// VisitEstimator produces the page visits figure.
type VisitEstimator interface {
	EstimateVisits(enquiries []*model.Enquiry) int
}

// EstimatorFunc adapts a function to VisitEstimator.
type EstimatorFunc func(enquiries []*model.Enquiry) int

func (f EstimatorFunc) EstimateVisits(enquiries []*model.Enquiry) int {
	return f(enquiries)
}

const (
	visitsPerVisitor = 3
	visitsOffset     = 25
	visitsJitter     = 20
)

// RandomEstimator guesses visits as distinct emails × 3 + 25 plus a random
// jitter in [0, 20).
type RandomEstimator struct{}

func (RandomEstimator) EstimateVisits(enquiries []*model.Enquiry) int {
	return EstimateVisits(enquiries, rand.IntN(visitsJitter))
}

// EstimateVisits applies the estimate formula with the given jitter.
func EstimateVisits(enquiries []*model.Enquiry, jitter int) int {
	return DistinctEmails(enquiries)*visitsPerVisitor + jitter + visitsOffset
}

// DistinctEmails counts unique email values, compared exactly.
func DistinctEmails(enquiries []*model.Enquiry) int {
	seen := make(map[string]struct{}, len(enquiries))
	for _, e := range enquiries {
		seen[e.Email] = struct{}{}
	}
	return len(seen)
}
