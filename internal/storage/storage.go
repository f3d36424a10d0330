// Package storage defines the persistence contract of the crawl and scan
// pipelines and ships an in-memory implementation.
package storage

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

//go:generate mockgen -destination=../../testutils/mocks/storage/mock_store.go -package=storage github.com/jonesrussell/north-cloud/leadscan/internal/storage Store

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// AssetStore persists domain records.
type AssetStore interface {
	// FindAsset returns the asset for a normalized domain or ErrNotFound.
	FindAsset(ctx context.Context, domainName string) (*domain.Asset, error)
	// InsertAsset stores asset unless one already exists for its domain.
	// It reports whether the insert happened; the check and the write are atomic.
	InsertAsset(ctx context.Context, asset *domain.Asset) (bool, error)
	// SaveAsset overwrites an existing asset or returns ErrNotFound.
	SaveAsset(ctx context.Context, asset *domain.Asset) error
	// ListAssets returns every asset, newest first.
	ListAssets(ctx context.Context) ([]*domain.Asset, error)
}

// ReportStore persists scan reports.
type ReportStore interface {
	// SaveReport appends a report.
	SaveReport(ctx context.Context, report *domain.ScanReport) error
	// FindReport returns the most recent report for a domain or ErrNotFound.
	FindReport(ctx context.Context, domainName string) (*domain.ScanReport, error)
	// ListReports returns every report, newest first.
	ListReports(ctx context.Context) ([]*domain.ScanReport, error)
}

// Store is the full persistence contract.
type Store interface {
	AssetStore
	ReportStore
}
