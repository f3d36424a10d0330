package domain

// Status is a pipeline state reported to subscribers.
type Status string

// Crawl statuses.
const (
	StatusCrawling  Status = "Crawling"
	StatusCompleted Status = "Completed"
	StatusDuplicate Status = "Duplicate"
	StatusTimeout   Status = "Timeout"
	StatusError     Status = "Error"
)

// Scan statuses. Scan failures reuse StatusError.
const (
	StatusScanning Status = "Scanning"
	StatusScanned  Status = "Scanned"
)

// StatusUpdate is the wire-agnostic payload of a status event. Optional
// fields are omitted when empty so their presence identifies the event kind.
type StatusUpdate struct {
	Domain         string `json:"domain"`
	Status         Status `json:"status"`
	SuggestedEmail string `json:"suggestedEmail,omitempty"`
	Flagged        string `json:"flagged,omitempty"`
	Error          string `json:"error,omitempty"`
}

// FlaggedLabel renders a verdict the way status payloads carry it.
func FlaggedLabel(flagged bool) string {
	if flagged {
		return "yes"
	}
	return "no"
}
