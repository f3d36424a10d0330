package scanner

import "errors"

var (
	// ErrNoScanners is returned when a submission names no scanners.
	ErrNoScanners = errors.New("no scanners submitted")

	// ErrNoDomains is returned when a submission carries no domains.
	ErrNoDomains = errors.New("no domains submitted")
)

// AssetNotFoundError is returned when a scan targets a domain that was never
// crawled.
type AssetNotFoundError struct {
	Domain string
}

func (e *AssetNotFoundError) Error() string {
	return "Asset not found for domain: " + e.Domain
}
