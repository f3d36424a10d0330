// Package crawler runs the per-domain crawl pipeline: resolve the domain's
// pages, fetch them in order, extract contacts and persist the record.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/contact"
	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/feed"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/metrics"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// URLResolver resolves the page set of a target.
type URLResolver interface {
	Resolve(ctx context.Context, target domain.Target) (*feed.Resolution, error)
}

// PageFetcher retrieves one document body.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// SnapshotCache keeps the pages of completed crawls.
type SnapshotCache interface {
	Put(domainName string, pages []domain.Page) error
	Get(domainName string) ([]domain.Page, error)
}

// StatusPublisher receives crawl status updates.
type StatusPublisher interface {
	PublishCrawlStatus(ctx context.Context, update domain.StatusUpdate)
}

// Params holds the collaborators of a Crawler. Snapshots, Publisher and
// Metrics are optional.
type Params struct {
	Config    Config
	Logger    logger.Logger
	Resolver  URLResolver
	Fetcher   PageFetcher
	Store     storage.AssetStore
	Snapshots SnapshotCache
	Publisher StatusPublisher
	Metrics   *metrics.Metrics
}

// Crawler orchestrates domain crawls.
type Crawler struct {
	config    Config
	logger    logger.Logger
	resolver  URLResolver
	fetcher   PageFetcher
	store     storage.AssetStore
	snapshots SnapshotCache
	publisher StatusPublisher
	metrics   *metrics.Metrics
	pool      *worker.Pool
}

// New creates a Crawler and its worker pool. The pool runs once Start is called.
func New(p Params) (*Crawler, error) {
	if p.Resolver == nil || p.Fetcher == nil || p.Store == nil {
		return nil, errors.New("crawler requires a resolver, a fetcher and a store")
	}

	cfg := p.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawler config: %w", err)
	}

	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("component", "crawler"))

	pool, err := worker.NewPool("crawl", cfg.Pool, log)
	if err != nil {
		return nil, fmt.Errorf("create crawl pool: %w", err)
	}

	return &Crawler{
		config:    cfg,
		logger:    log,
		resolver:  p.Resolver,
		fetcher:   p.Fetcher,
		store:     p.Store,
		snapshots: p.Snapshots,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		pool:      pool,
	}, nil
}

// Start launches the crawl workers.
func (c *Crawler) Start(ctx context.Context) error {
	return c.pool.Start(ctx)
}

// Stop drains the crawl workers.
func (c *Crawler) Stop(ctx context.Context) error {
	return c.pool.Stop(ctx)
}

// Stats returns the crawl pool statistics.
func (c *Crawler) Stats() worker.PoolStats {
	return c.pool.Stats()
}

// Submit validates domains and queues one crawl unit per domain, blocking
// while the pool queue is full. Per-domain failures are reported as status
// events, never returned.
func (c *Crawler) Submit(ctx context.Context, domains []string) error {
	if err := ValidateDomains(domains); err != nil {
		return err
	}
	for _, d := range domains {
		if err := c.pool.Submit(ctx, c.job(d)); err != nil {
			return fmt.Errorf("queue crawl for %s: %w", d, err)
		}
	}
	return nil
}

// TrySubmit is Submit without blocking. It returns worker.ErrQueueFull when
// the pool is saturated; domains queued before that keep running.
func (c *Crawler) TrySubmit(domains []string) error {
	if err := ValidateDomains(domains); err != nil {
		return err
	}
	for _, d := range domains {
		if err := c.pool.TrySubmit(c.job(d)); err != nil {
			return fmt.Errorf("queue crawl for %s: %w", d, err)
		}
	}
	return nil
}

func (c *Crawler) job(raw string) worker.Job {
	return worker.Job{
		Name: "crawl:" + raw,
		Run: func(ctx context.Context) error {
			if err := wait(ctx, c.config.StartDelay); err != nil {
				return err
			}
			return c.Crawl(ctx, raw).Err
		},
	}
}

// Crawl runs one domain through the pipeline synchronously and reports the
// outcome. It emits Crawling first and the outcome's status last.
func (c *Crawler) Crawl(ctx context.Context, raw string) Result {
	start := time.Now()

	target, err := domain.ParseTarget(raw, c.config.DefaultScheme)
	if err != nil {
		result := Result{Domain: raw, Outcome: OutcomeError, Err: fmt.Errorf("invalid domain %q: %w", raw, err)}
		c.publish(ctx, result.StatusUpdate())
		return result
	}

	c.publish(ctx, domain.StatusUpdate{Domain: target.Domain, Status: domain.StatusCrawling})

	crawled, err := c.collectWithDeadline(ctx, target)

	// Finalizing must survive the caller giving up on the unit.
	finalCtx := context.WithoutCancel(ctx)
	result := c.finalize(finalCtx, target, crawled, err)

	c.metrics.ObserveCrawl(string(result.Outcome), time.Since(start))
	c.logger.Info("crawl finished",
		logger.String("domain", target.Domain),
		logger.String("outcome", string(result.Outcome)),
		logger.Int("pages", result.PagesFetched),
		logger.Duration("duration", time.Since(start)),
	)
	c.publish(finalCtx, result.StatusUpdate())

	return result
}

// Pages returns the snapshot of a domain's pages, crawling again when no
// snapshot is cached. A re-crawl is neither persisted nor announced.
func (c *Crawler) Pages(ctx context.Context, raw string) ([]domain.Page, error) {
	target, err := domain.ParseTarget(raw, c.config.DefaultScheme)
	if err != nil {
		return nil, err
	}

	if c.snapshots != nil {
		if pages, err := c.snapshots.Get(target.Domain); err == nil {
			return pages, nil
		}
	}

	crawled, err := c.collectWithDeadline(ctx, target)
	if err != nil {
		return nil, err
	}
	c.cache(target.Domain, crawled.Pages)
	return crawled.Pages, nil
}

// collectWithDeadline races collect against the domain deadline. On expiry
// the deadline context cancels in-flight fetches.
func (c *Crawler) collectWithDeadline(ctx context.Context, target domain.Target) (*domain.CrawledAsset, error) {
	dctx, cancel := context.WithTimeout(ctx, c.config.DomainTimeout)
	defer cancel()

	type collected struct {
		asset *domain.CrawledAsset
		err   error
	}
	done := make(chan collected, 1)
	go func() {
		asset, err := c.collect(dctx, target)
		done <- collected{asset: asset, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrCrawlTimeout, c.config.DomainTimeout, target.Origin)
		}
		return res.asset, res.err
	case <-dctx.Done():
		if errors.Is(dctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrCrawlTimeout, c.config.DomainTimeout, target.Origin)
		}
		return nil, dctx.Err()
	}
}

// collect resolves, fetches in resolution order and extracts contacts.
// Individual fetch failures are skipped.
func (c *Crawler) collect(ctx context.Context, target domain.Target) (*domain.CrawledAsset, error) {
	resolution, err := c.resolver.Resolve(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("resolve urls: %w", err)
	}

	c.logger.Debug("pages resolved",
		logger.String("domain", target.Domain),
		logger.Int("urls", len(resolution.URLs)),
		logger.Int("sitemaps_visited", len(resolution.VisitedSitemaps)),
		logger.Bool("homepage_fallback", resolution.UsedFallback),
		logger.Bool("robots_found", resolution.Robots.Found),
	)

	urls := slices.Clone(resolution.URLs)
	if !slices.Contains(urls, target.Origin) {
		urls = append(urls, target.Origin)
	}

	pages := make([]domain.Page, 0, len(urls))
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.fetcher.Get(ctx, u)
		if err != nil {
			c.logger.Debug("skipping url", logger.String("url", u), logger.Error(err))
			continue
		}
		if body == "" {
			continue
		}
		pages = append(pages, domain.Page{URL: u, HTML: body})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.metrics.AddPagesFetched(len(pages))

	if len(pages) == 0 {
		return nil, &NoContentError{Domain: target.Domain}
	}

	contacts := contact.Extract(pages)
	return &domain.CrawledAsset{
		Asset: &domain.Asset{
			Domain:    target.Domain,
			URLs:      urls,
			Emails:    contacts.Emails,
			Phones:    contacts.Phones,
			ScannedBy: []domain.ScanEntry{},
		},
		Pages: pages,
	}, nil
}

// finalize persists the crawl result and maps it to an outcome. Timeout and
// Error leave a placeholder record so a failed attempt is distinguishable
// from a domain never crawled; an existing record is never overwritten.
func (c *Crawler) finalize(ctx context.Context, target domain.Target, crawled *domain.CrawledAsset, crawlErr error) Result {
	result := Result{Domain: target.Domain}

	if crawlErr != nil {
		result.Outcome = OutcomeError
		if errors.Is(crawlErr, ErrCrawlTimeout) {
			result.Outcome = OutcomeTimeout
		}
		result.Err = crawlErr
		result.Asset = domain.NewPlaceholderAsset(target.Domain)
		if _, err := c.store.InsertAsset(ctx, result.Asset); err != nil {
			c.logger.Error("failed to store placeholder",
				logger.String("domain", target.Domain),
				logger.Error(err),
			)
		}
		return result
	}

	result.Asset = crawled.Asset
	result.PagesFetched = len(crawled.Pages)

	inserted, err := c.store.InsertAsset(ctx, crawled.Asset)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = fmt.Errorf("store asset: %w", err)
		return result
	}
	if !inserted {
		result.Outcome = OutcomeDuplicate
		return result
	}

	c.cache(target.Domain, crawled.Pages)
	result.Outcome = OutcomeCompleted
	result.SuggestedEmail, _ = SuggestEmail(crawled.Asset.Emails, target.Domain)
	return result
}

func (c *Crawler) cache(domainName string, pages []domain.Page) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Put(domainName, pages); err != nil {
		c.logger.Warn("failed to cache snapshot", logger.String("domain", domainName), logger.Error(err))
	}
}

func (c *Crawler) publish(ctx context.Context, update domain.StatusUpdate) {
	if c.publisher != nil {
		c.publisher.PublishCrawlStatus(ctx, update)
	}
}

// wait sleeps for d unless ctx ends first. d <= 0 returns immediately.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
