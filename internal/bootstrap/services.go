package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/leadscan/internal/crawler"
	"github.com/jonesrussell/north-cloud/leadscan/internal/feed"
	"github.com/jonesrussell/north-cloud/leadscan/internal/fetcher"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/metrics"
	"github.com/jonesrussell/north-cloud/leadscan/internal/scanner"
	"github.com/jonesrussell/north-cloud/leadscan/internal/snapshot"
	"github.com/jonesrussell/north-cloud/leadscan/internal/sse"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

// Services holds the running pipeline components.
type Services struct {
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Broker    *sse.Broker
	Publisher *sse.StatusPublisher
	Snapshots *snapshot.Cache
	Crawler   *crawler.Crawler
	Scanners  *scanner.Registry
	Scans     *scanner.Service

	logger logger.Logger
}

// SetupServices builds every pipeline component on top of store. Nothing
// runs until Start is called.
func SetupServices(ctx context.Context, deps *Deps, store storage.Store) (*Services, error) {
	cfg := deps.Config
	log := deps.Logger

	registry := metrics.NewRegistry()
	m := metrics.New(registry)

	broker := sse.NewBroker(log.With(logger.String("component", "sse")),
		sse.WithConfig(cfg.SSE),
		sse.WithClientGauge(m.SSEClients),
	)
	publisher := sse.NewStatusPublisher(broker, log)

	client := fetcher.NewClient(&http.Client{}, cfg.Fetcher)
	robots := fetcher.NewRobotsFetcher(client, cfg.Fetcher.WithDefaults().RobotsCacheTTL)
	resolver := feed.NewResolver(client, robots, cfg.Crawler.MaxSitemapURLs, log)

	snapshots, err := snapshot.New(ctx, cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}

	c, err := crawler.New(crawler.Params{
		Config:    cfg.Crawler,
		Logger:    log,
		Resolver:  resolver,
		Fetcher:   client,
		Store:     store,
		Snapshots: snapshots,
		Publisher: publisher,
		Metrics:   m,
	})
	if err != nil {
		_ = snapshots.Close()
		return nil, err
	}

	scannerLog := log.With(logger.String("component", "scanner"))
	scanners := scanner.NewRegistry(
		scanner.NewSeoScanner(c, client, cfg.Scanner.Seo, scannerLog),
		scanner.NewTrackerConsentScanner(
			scanner.NewChromeBrowser(cfg.Scanner.Tracker),
			cfg.Scanner.Tracker,
			cfg.Crawler.DefaultScheme,
			scannerLog,
		),
	)

	scans, err := scanner.NewService(scanner.Params{
		Config:    cfg.Scanner,
		Logger:    log,
		Registry:  scanners,
		Store:     store,
		Publisher: publisher,
		Metrics:   m,
	})
	if err != nil {
		_ = snapshots.Close()
		return nil, err
	}

	return &Services{
		Registry:  registry,
		Metrics:   m,
		Broker:    broker,
		Publisher: publisher,
		Snapshots: snapshots,
		Crawler:   c,
		Scanners:  scanners,
		Scans:     scans,
		logger:    log,
	}, nil
}

// Start launches the broker and both worker pools.
func (s *Services) Start(ctx context.Context) error {
	if err := s.Broker.Start(ctx); err != nil {
		return fmt.Errorf("start broker: %w", err)
	}
	if err := s.Crawler.Start(ctx); err != nil {
		return fmt.Errorf("start crawler: %w", err)
	}
	if err := s.Scans.Start(ctx); err != nil {
		return fmt.Errorf("start scan service: %w", err)
	}
	return nil
}

// Stop drains the pools before closing the broker, so units finishing during
// the drain still announce their outcome.
func (s *Services) Stop(ctx context.Context) error {
	var errs []error

	s.logger.Info("Stopping crawl pool")
	if err := s.Crawler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop crawler: %w", err))
	}
	s.logger.Info("Stopping scan pool")
	if err := s.Scans.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop scan service: %w", err))
	}
	s.logger.Info("Stopping SSE broker")
	if err := s.Broker.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop broker: %w", err))
	}
	if err := s.Snapshots.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close snapshot cache: %w", err))
	}
	return errors.Join(errs...)
}

// Close releases resources of services that were never started.
func (s *Services) Close() error {
	return s.Snapshots.Close()
}
