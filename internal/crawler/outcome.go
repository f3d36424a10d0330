package crawler

import (
	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// Outcome is the terminal state of one domain crawl.
type Outcome string

// Crawl outcomes. Their values match the corresponding status labels.
const (
	OutcomeCompleted Outcome = Outcome(domain.StatusCompleted)
	OutcomeDuplicate Outcome = Outcome(domain.StatusDuplicate)
	OutcomeTimeout   Outcome = Outcome(domain.StatusTimeout)
	OutcomeError     Outcome = Outcome(domain.StatusError)
)

// Result is what a crawl unit produced.
type Result struct {
	Domain  string
	Outcome Outcome
	// Asset is the persisted record for Completed, the discarded record for
	// Duplicate and the placeholder for Timeout and Error.
	Asset          *domain.Asset
	PagesFetched   int
	SuggestedEmail string
	Err            error
}

// StatusUpdate renders the result as the terminal status event payload.
func (r Result) StatusUpdate() domain.StatusUpdate {
	update := domain.StatusUpdate{Domain: r.Domain, Status: domain.Status(r.Outcome)}
	switch r.Outcome {
	case OutcomeCompleted:
		update.SuggestedEmail = r.SuggestedEmail
	case OutcomeError:
		if r.Err != nil {
			update.Error = r.Err.Error()
		}
	}
	return update
}
