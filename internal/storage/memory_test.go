package storage_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

func TestMemoryStore_InsertIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := &domain.Asset{Domain: "x.com", Emails: []string{"info@x.com"}}
	inserted, err := store.InsertAsset(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	inserted, err = store.InsertAsset(ctx, &domain.Asset{Domain: "x.com", Emails: []string{"other@x.com"}})
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := store.FindAsset(ctx, "x.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"info@x.com"}, got.Emails)
}

func TestMemoryStore_ConcurrentInsertHasOneWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.InsertAsset(ctx, domain.NewPlaceholderAsset("race.com"))
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestMemoryStore_FindMissing(t *testing.T) {
	t.Parallel()

	_, err := storage.NewMemoryStore().FindAsset(context.Background(), "nope.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = storage.NewMemoryStore().FindReport(context.Background(), "nope.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_SaveAssetIsolatesCallers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	asset := domain.NewPlaceholderAsset("x.com")
	_, err := store.InsertAsset(ctx, asset)
	require.NoError(t, err)

	asset.URLs = append(asset.URLs, "https://x.com/leak")
	got, err := store.FindAsset(ctx, "x.com")
	require.NoError(t, err)
	assert.Empty(t, got.URLs)

	got.AppendScan("SeoScanner", got.CreatedAt)
	require.NoError(t, store.SaveAsset(ctx, got))

	reloaded, err := store.FindAsset(ctx, "x.com")
	require.NoError(t, err)
	require.Len(t, reloaded.ScannedBy, 1)

	assert.ErrorIs(t, store.SaveAsset(ctx, domain.NewPlaceholderAsset("missing.com")), storage.ErrNotFound)
}

func TestMemoryStore_ReportsNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	require.NoError(t, store.SaveReport(ctx, &domain.ScanReport{ID: "1", Domain: "x.com", Scanner: "SeoScanner"}))
	require.NoError(t, store.SaveReport(ctx, &domain.ScanReport{ID: "2", Domain: "x.com", Scanner: "TrackerConsentScanner"}))
	require.NoError(t, store.SaveReport(ctx, &domain.ScanReport{ID: "3", Domain: "y.com", Scanner: "SeoScanner"}))

	latest, err := store.FindReport(ctx, "x.com")
	require.NoError(t, err)
	assert.Equal(t, "2", latest.ID)

	all, err := store.ListReports(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)
}

func TestMemoryStore_SaveReportAssignsID(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	report := &domain.ScanReport{Domain: "x.com", Scanner: "SeoScanner"}
	require.NoError(t, store.SaveReport(ctx, report))
	require.NoError(t, uuid.Validate(report.ID))

	got, err := store.FindReport(ctx, "x.com")
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)

	kept := &domain.ScanReport{ID: "fixed", Domain: "y.com", Scanner: "SeoScanner"}
	require.NoError(t, store.SaveReport(ctx, kept))
	assert.Equal(t, "fixed", kept.ID)
}
