package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// MemoryStore keeps records in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	assets  map[string]*domain.Asset
	order   []string
	reports []*domain.ScanReport
	nextID  int64
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assets: make(map[string]*domain.Asset),
		now:    time.Now,
	}
}

func (m *MemoryStore) FindAsset(_ context.Context, domainName string) (*domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assets[domainName]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneAsset(a), nil
}

func (m *MemoryStore) InsertAsset(_ context.Context, asset *domain.Asset) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.assets[asset.Domain]; exists {
		return false, nil
	}

	m.nextID++
	now := m.now().UTC()
	asset.ID = m.nextID
	asset.CreatedAt = now
	asset.UpdatedAt = now

	m.assets[asset.Domain] = cloneAsset(asset)
	m.order = append(m.order, asset.Domain)
	return true, nil
}

func (m *MemoryStore) SaveAsset(_ context.Context, asset *domain.Asset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.assets[asset.Domain]
	if !ok {
		return ErrNotFound
	}

	asset.ID = existing.ID
	asset.CreatedAt = existing.CreatedAt
	asset.UpdatedAt = m.now().UTC()
	m.assets[asset.Domain] = cloneAsset(asset)
	return nil
}

func (m *MemoryStore) ListAssets(_ context.Context) ([]*domain.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Asset, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, cloneAsset(m.assets[m.order[i]]))
	}
	return out, nil
}

// SaveReport appends a report, assigning an ID when it has none.
func (m *MemoryStore) SaveReport(_ context.Context, report *domain.ScanReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = m.now().UTC()
	}
	r := *report
	m.reports = append(m.reports, &r)
	return nil
}

func (m *MemoryStore) FindReport(_ context.Context, domainName string) (*domain.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.reports) - 1; i >= 0; i-- {
		if m.reports[i].Domain == domainName {
			r := *m.reports[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListReports(_ context.Context) ([]*domain.ScanReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.ScanReport, 0, len(m.reports))
	for i := len(m.reports) - 1; i >= 0; i-- {
		r := *m.reports[i]
		out = append(out, &r)
	}
	return out, nil
}

func cloneAsset(a *domain.Asset) *domain.Asset {
	c := *a
	c.URLs = slices.Clone(a.URLs)
	c.Emails = slices.Clone(a.Emails)
	c.Phones = slices.Clone(a.Phones)
	c.ScannedBy = slices.Clone(a.ScannedBy)
	return &c
}
