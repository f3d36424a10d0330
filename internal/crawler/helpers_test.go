package crawler_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/crawler"
	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/feed"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/snapshot"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// stubResolver returns a fixed URL list for every target.
type stubResolver struct {
	urls []string
	err  error
}

func (r *stubResolver) Resolve(_ context.Context, _ domain.Target) (*feed.Resolution, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &feed.Resolution{URLs: append([]string(nil), r.urls...)}, nil
}

// stubFetcher serves bodies by URL; unknown URLs fail. When block is set,
// every Get waits for its context instead.
type stubFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	block  bool
	calls  []string
}

func (f *stubFetcher) Get(ctx context.Context, rawURL string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	body, ok := f.bodies[rawURL]
	if !ok {
		return "", errors.New("connection refused")
	}
	return body, nil
}

func (f *stubFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recordingPublisher keeps every status update.
type recordingPublisher struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
}

func (p *recordingPublisher) PublishCrawlStatus(_ context.Context, update domain.StatusUpdate) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, update)
}

func (p *recordingPublisher) statuses(domainName string) []domain.Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []domain.Status
	for _, u := range p.updates {
		if u.Domain == domainName {
			out = append(out, u.Status)
		}
	}
	return out
}

func (p *recordingPublisher) last() domain.StatusUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates[len(p.updates)-1]
}

type fixture struct {
	crawler   *crawler.Crawler
	fetcher   *stubFetcher
	store     *storage.MemoryStore
	snapshots *snapshot.Cache
	publisher *recordingPublisher
}

func newFixture(t *testing.T, resolver crawler.URLResolver, f *stubFetcher, cfg crawler.Config) *fixture {
	t.Helper()

	cache, err := snapshot.New(context.Background(), snapshot.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	if cfg.StartDelay == 0 {
		cfg.StartDelay = -1
	}
	if cfg.Pool == (worker.Config{}) {
		cfg.Pool = worker.Config{PoolSize: 2, QueueSize: 10}
	}

	fx := &fixture{
		fetcher:   f,
		store:     storage.NewMemoryStore(),
		snapshots: cache,
		publisher: &recordingPublisher{},
	}

	fx.crawler, err = crawler.New(crawler.Params{
		Config:    cfg,
		Logger:    logger.NewNop(),
		Resolver:  resolver,
		Fetcher:   f,
		Store:     fx.store,
		Snapshots: cache,
		Publisher: fx.publisher,
	})
	require.NoError(t, err)

	return fx
}
