// Package scanner runs quality and compliance scanners against crawled
// domains and records their reports.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// Kind identifies a scanner. The set is closed.
type Kind string

// Scanner kinds. The values are the names callers submit and the names
// recorded in scan history.
const (
	KindSeo            Kind = "SeoScanner"
	KindTrackerConsent Kind = "TrackerConsentScanner"
)

// Kinds lists every scanner kind.
func Kinds() []Kind {
	return []Kind{KindSeo, KindTrackerConsent}
}

// ParseKind returns the kind named name or an *UnknownScannerError.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", &UnknownScannerError{Name: name}
}

// Scanner inspects one asset and produces a report.
type Scanner interface {
	Kind() Kind
	Scan(ctx context.Context, asset *domain.Asset) (*domain.ScanReport, error)
}

// UnknownScannerError is returned for a scanner name outside the registry.
type UnknownScannerError struct {
	Name string
}

func (e *UnknownScannerError) Error() string {
	return "Invalid scanner: " + e.Name
}

// ExecutionError wraps a failure inside a scanner run.
type ExecutionError struct {
	Kind Kind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Registry dispatches scanner names to scanner instances.
type Registry struct {
	scanners map[Kind]Scanner
}

// NewRegistry creates a registry. A later scanner of the same kind replaces
// an earlier one.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: make(map[Kind]Scanner, len(scanners))}
	for _, s := range scanners {
		r.scanners[s.Kind()] = s
	}
	return r
}

// Lookup returns the scanner registered for name.
func (r *Registry) Lookup(name string) (Scanner, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return nil, err
	}
	s, ok := r.scanners[kind]
	if !ok {
		return nil, &UnknownScannerError{Name: name}
	}
	return s, nil
}

// Validate rejects an empty list and blank names. Names the registry does
// not know pass here; they fail per domain in Lookup, after the scanners
// listed before them have run.
func (r *Registry) Validate(names []string) error {
	if len(names) == 0 {
		return ErrNoScanners
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("scanners[%d]: scanner is empty", i)
		}
	}
	return nil
}
