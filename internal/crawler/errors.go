package crawler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCrawlTimeout is returned when the per-domain deadline elapses.
	ErrCrawlTimeout = errors.New("crawl timed out")

	// ErrNoDomains is returned when a submission carries no domains.
	ErrNoDomains = errors.New("no domains submitted")
)

// NoContentError reports that no resolved URL yielded a body.
type NoContentError struct {
	Domain string
}

func (e *NoContentError) Error() string {
	return "No HTML content found for domain: " + e.Domain
}

// ValidateDomains checks a submitted domain list: it must be non-empty and
// hold no blank entries.
func ValidateDomains(domains []string) error {
	if len(domains) == 0 {
		return ErrNoDomains
	}
	for i, d := range domains {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("domains[%d]: domain is empty", i)
		}
	}
	return nil
}

