package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

const reportSelectColumns = `id, domain, scanner, report, flagged, created_at`

// ReportRepository handles the scan_reports table.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SaveReport inserts a report, assigning an ID when it has none.
func (r *ReportRepository) SaveReport(ctx context.Context, report *domain.ScanReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}

	query := `
		INSERT INTO scan_reports (id, domain, scanner, report, flagged)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if err := r.db.QueryRowxContext(ctx, query,
		report.ID, report.Domain, report.Scanner, report.Report, report.Flagged,
	).Scan(&report.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert scan report: %w", err)
	}
	return nil
}

// FindReport returns the latest report for a domain.
func (r *ReportRepository) FindReport(ctx context.Context, domainName string) (*domain.ScanReport, error) {
	query := `SELECT ` + reportSelectColumns + ` FROM scan_reports
		WHERE domain = $1 ORDER BY created_at DESC LIMIT 1`

	var report domain.ScanReport
	if err := r.db.GetContext(ctx, &report, query, domainName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select scan report: %w", err)
	}
	return &report, nil
}

// ListReports returns every report, newest first.
func (r *ReportRepository) ListReports(ctx context.Context) ([]*domain.ScanReport, error) {
	query := `SELECT ` + reportSelectColumns + ` FROM scan_reports ORDER BY created_at DESC`

	var reports []*domain.ScanReport
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("failed to list scan reports: %w", err)
	}
	return reports, nil
}
