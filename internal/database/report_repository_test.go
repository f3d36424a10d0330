package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

var reportColumns = []string{"id", "domain", "scanner", "report", "flagged", "created_at"}

func TestReportRepository_SaveReport_AssignsID(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO scan_reports").
		WithArgs(sqlmock.AnyArg(), "x.com", "SeoScanner", "SEO Report for: x.com", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	report := &domain.ScanReport{Domain: "x.com", Scanner: "SeoScanner", Report: "SEO Report for: x.com", Flagged: true}
	require.NoError(t, store.SaveReport(context.Background(), report))

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, now, report.CreatedAt)
	expectationsMet(t, mock)
}

func TestReportRepository_FindReport(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM scan_reports\\s+WHERE domain = \\$1 ORDER BY created_at DESC LIMIT 1").
		WithArgs("x.com").
		WillReturnRows(sqlmock.NewRows(reportColumns).AddRow("r-1", "x.com", "SeoScanner", "body", false, now))

	report, err := store.FindReport(context.Background(), "x.com")

	require.NoError(t, err)
	assert.Equal(t, "r-1", report.ID)
	assert.False(t, report.Flagged)
	expectationsMet(t, mock)
}

func TestReportRepository_FindReport_NotFound(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT .+ FROM scan_reports").
		WithArgs("x.com").
		WillReturnRows(sqlmock.NewRows(reportColumns))

	_, err := store.FindReport(context.Background(), "x.com")

	assert.ErrorIs(t, err, storage.ErrNotFound)
	expectationsMet(t, mock)
}

func TestReportRepository_ListReports(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM scan_reports ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(reportColumns).
			AddRow("r-2", "x.com", "TrackerConsentScanner", "t", true, now).
			AddRow("r-1", "x.com", "SeoScanner", "s", false, now))

	reports, err := store.ListReports(context.Background())

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "TrackerConsentScanner", reports[0].Scanner)
	expectationsMet(t, mock)
}
