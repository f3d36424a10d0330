package scanner_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/scanner"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
	storagemocks "github.com/jonesrussell/north-cloud/leadscan/testutils/mocks/storage"
)

// stubScanner returns a fixed verdict and counts its runs.
type stubScanner struct {
	kind    scanner.Kind
	flagged bool
	err     error

	mu    sync.Mutex
	calls int
}

func (s *stubScanner) Kind() scanner.Kind { return s.kind }

func (s *stubScanner) Scan(_ context.Context, asset *domain.Asset) (*domain.ScanReport, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &domain.ScanReport{Domain: asset.Domain, Scanner: string(s.kind), Report: "ok", Flagged: s.flagged}, nil
}

func (s *stubScanner) runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (p *recordingPublisher) PublishScanStatus(_ context.Context, update domain.StatusUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}

func (p *recordingPublisher) all() []domain.StatusUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.StatusUpdate(nil), p.updates...)
}

func newService(t *testing.T, store storage.Store, pub scanner.StatusPublisher, scanners ...scanner.Scanner) *scanner.Service {
	t.Helper()
	svc, err := scanner.NewService(scanner.Params{
		Config: scanner.Config{
			StartDelay: -1,
			Pool:       worker.Config{PoolSize: 2, QueueSize: 10},
		},
		Logger:    logger.NewNop(),
		Registry:  scanner.NewRegistry(scanners...),
		Store:     store,
		Publisher: pub,
	})
	require.NoError(t, err)
	return svc
}

func seedAsset(t *testing.T, store *storage.MemoryStore, name string) {
	t.Helper()
	inserted, err := store.InsertAsset(context.Background(), &domain.Asset{Domain: name, URLs: []string{"https://" + name + "/"}})
	require.NoError(t, err)
	require.True(t, inserted)
}

func TestService_ScanRunsScannersInOrder(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAsset(t, store, "x.com")
	pub := &recordingPublisher{}
	seo := &stubScanner{kind: scanner.KindSeo, flagged: true}
	tracker := &stubScanner{kind: scanner.KindTrackerConsent}
	svc := newService(t, store, pub, seo, tracker)

	result := svc.Scan(context.Background(), "www.X.com", []string{"SeoScanner", "TrackerConsentScanner"})
	require.NoError(t, result.Err)
	require.Len(t, result.Reports, 2)

	assert.Equal(t, []domain.StatusUpdate{
		{Domain: "x.com", Status: domain.StatusScanning},
		{Domain: "x.com", Status: domain.StatusScanned, Flagged: "yes"},
		{Domain: "x.com", Status: domain.StatusScanned, Flagged: "no"},
	}, pub.all())

	asset, err := store.FindAsset(context.Background(), "x.com")
	require.NoError(t, err)
	require.Len(t, asset.ScannedBy, 2)
	assert.Equal(t, "SeoScanner", asset.ScannedBy[0].Scanner)
	assert.Equal(t, "TrackerConsentScanner", asset.ScannedBy[1].Scanner)

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestService_UnknownScannerAbortsRemaining(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAsset(t, store, "x.com")
	pub := &recordingPublisher{}
	seo := &stubScanner{kind: scanner.KindSeo}
	tracker := &stubScanner{kind: scanner.KindTrackerConsent}
	svc := newService(t, store, pub, seo, tracker)

	result := svc.Scan(context.Background(), "x.com", []string{"SeoScanner", "Bogus", "TrackerConsentScanner"})

	var unknown *scanner.UnknownScannerError
	require.ErrorAs(t, result.Err, &unknown)
	assert.Len(t, result.Reports, 1)
	assert.Equal(t, 1, seo.runs())
	assert.Zero(t, tracker.runs())

	updates := pub.all()
	require.Len(t, updates, 3)
	assert.Equal(t, domain.StatusUpdate{Domain: "x.com", Status: domain.StatusError, Error: "Invalid scanner: Bogus"}, updates[2])

	reports, err := store.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestService_ScannerFailureIsError(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAsset(t, store, "x.com")
	pub := &recordingPublisher{}
	tracker := &stubScanner{kind: scanner.KindTrackerConsent, err: errors.New("browser crashed")}
	svc := newService(t, store, pub, tracker)

	result := svc.Scan(context.Background(), "x.com", []string{"TrackerConsentScanner"})

	var execErr *scanner.ExecutionError
	require.ErrorAs(t, result.Err, &execErr)
	last := pub.all()[len(pub.all())-1]
	assert.Equal(t, domain.StatusError, last.Status)
	assert.Contains(t, last.Error, "browser crashed")
}

func TestService_AssetNotFound(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newService(t, storage.NewMemoryStore(), pub, &stubScanner{kind: scanner.KindSeo})

	result := svc.Scan(context.Background(), "missing.com", []string{"SeoScanner"})
	require.Error(t, result.Err)

	assert.Equal(t, []domain.StatusUpdate{
		{Domain: "missing.com", Status: domain.StatusScanning},
		{Domain: "missing.com", Status: domain.StatusError, Error: "Asset not found for domain: missing.com"},
	}, pub.all())
}

func TestService_SaveFailureIsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := storagemocks.NewMockStore(ctrl)
	store.EXPECT().FindAsset(gomock.Any(), "x.com").Return(&domain.Asset{Domain: "x.com"}, nil)
	store.EXPECT().SaveAsset(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	pub := &recordingPublisher{}
	svc := newService(t, store, pub, &stubScanner{kind: scanner.KindSeo})

	result := svc.Scan(context.Background(), "x.com", []string{"SeoScanner"})
	require.ErrorContains(t, result.Err, "connection reset")
	assert.Empty(t, result.Reports)
}

func TestService_SubmitValidation(t *testing.T) {
	svc := newService(t, storage.NewMemoryStore(), nil, &stubScanner{kind: scanner.KindSeo})

	require.ErrorIs(t, svc.Submit(context.Background(), nil, []string{"SeoScanner"}), scanner.ErrNoDomains)
	require.ErrorIs(t, svc.Submit(context.Background(), []string{"x.com"}, nil), scanner.ErrNoScanners)
	require.Error(t, svc.TrySubmit([]string{"x.com", ""}, []string{"SeoScanner"}))
	require.Error(t, svc.TrySubmit([]string{"x.com"}, []string{" "}))
}

func TestService_SubmitRunsInBackground(t *testing.T) {
	store := storage.NewMemoryStore()
	seedAsset(t, store, "a.com")
	seedAsset(t, store, "b.com")
	pub := &recordingPublisher{}
	seo := &stubScanner{kind: scanner.KindSeo}
	svc := newService(t, store, pub, seo)

	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	t.Cleanup(func() { _ = svc.Stop(ctx) })

	require.NoError(t, svc.Submit(ctx, []string{"a.com", "b.com"}, []string{"SeoScanner"}))

	require.Eventually(t, func() bool {
		scanned := 0
		for _, u := range pub.all() {
			if u.Status == domain.StatusScanned {
				scanned++
			}
		}
		return scanned == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, seo.runs())
}

func TestRegistry_Lookup(t *testing.T) {
	seo := &stubScanner{kind: scanner.KindSeo}
	reg := scanner.NewRegistry(seo)

	got, err := reg.Lookup("SeoScanner")
	require.NoError(t, err)
	assert.Same(t, seo, got)

	_, err = reg.Lookup("TrackerConsentScanner")
	var unknown *scanner.UnknownScannerError
	require.ErrorAs(t, err, &unknown)

	_, err = reg.Lookup("seoscanner")
	require.ErrorAs(t, err, &unknown)
	assert.EqualError(t, err, "Invalid scanner: seoscanner")
}

func TestRegistry_ValidateLeavesUnknownNamesToLookup(t *testing.T) {
	reg := scanner.NewRegistry(&stubScanner{kind: scanner.KindSeo})

	assert.ErrorIs(t, reg.Validate(nil), scanner.ErrNoScanners)
	assert.ErrorContains(t, reg.Validate([]string{"SeoScanner", " "}), "scanners[1]")
	assert.NoError(t, reg.Validate([]string{"SeoScanner", "NotAScanner"}))
}

func TestParseKind(t *testing.T) {
	k, err := scanner.ParseKind("TrackerConsentScanner")
	require.NoError(t, err)
	assert.Equal(t, scanner.KindTrackerConsent, k)

	_, err = scanner.ParseKind("")
	require.Error(t, err)
}
