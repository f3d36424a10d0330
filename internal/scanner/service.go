package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/metrics"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// StatusPublisher receives scan status updates.
type StatusPublisher interface {
	PublishScanStatus(ctx context.Context, update domain.StatusUpdate)
}

// Params holds the collaborators of a Service. Publisher and Metrics are
// optional.
type Params struct {
	Config    Config
	Logger    logger.Logger
	Registry  *Registry
	Store     storage.Store
	Publisher StatusPublisher
	Metrics   *metrics.Metrics
}

// Service runs scanners against persisted assets.
type Service struct {
	config    Config
	logger    logger.Logger
	registry  *Registry
	store     storage.Store
	publisher StatusPublisher
	metrics   *metrics.Metrics
	pool      *worker.Pool
	now       func() time.Time
}

// Result is what one scan unit produced. Reports holds every report saved
// before the unit stopped.
type Result struct {
	Domain  string
	Reports []*domain.ScanReport
	Err     error
}

// NewService creates a Service and its worker pool.
func NewService(p Params) (*Service, error) {
	if p.Registry == nil || p.Store == nil {
		return nil, errors.New("scan service requires a registry and a store")
	}

	cfg := p.Config.WithDefaults()
	if err := cfg.Pool.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scanner pool config: %w", err)
	}

	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}
	log = log.With(logger.String("component", "scanner"))

	pool, err := worker.NewPool("scan", cfg.Pool, log)
	if err != nil {
		return nil, fmt.Errorf("create scan pool: %w", err)
	}

	return &Service{
		config:    cfg,
		logger:    log,
		registry:  p.Registry,
		store:     p.Store,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		pool:      pool,
		now:       time.Now,
	}, nil
}

// Start launches the scan workers.
func (s *Service) Start(ctx context.Context) error {
	return s.pool.Start(ctx)
}

// Stop drains the scan workers.
func (s *Service) Stop(ctx context.Context) error {
	return s.pool.Stop(ctx)
}

// Stats returns the scan pool statistics.
func (s *Service) Stats() worker.PoolStats {
	return s.pool.Stats()
}

func (s *Service) validate(domains, scanners []string) error {
	if len(domains) == 0 {
		return ErrNoDomains
	}
	for i, d := range domains {
		if strings.TrimSpace(d) == "" {
			return fmt.Errorf("domains[%d]: domain is empty", i)
		}
	}
	return s.registry.Validate(scanners)
}

// Submit validates the request and queues one scan unit per domain,
// blocking while the pool queue is full.
func (s *Service) Submit(ctx context.Context, domains, scanners []string) error {
	if err := s.validate(domains, scanners); err != nil {
		return err
	}
	for _, d := range domains {
		if err := s.pool.Submit(ctx, s.job(d, scanners)); err != nil {
			return fmt.Errorf("queue scan for %s: %w", d, err)
		}
	}
	return nil
}

// TrySubmit is Submit without blocking. It returns worker.ErrQueueFull when
// the pool is saturated.
func (s *Service) TrySubmit(domains, scanners []string) error {
	if err := s.validate(domains, scanners); err != nil {
		return err
	}
	for _, d := range domains {
		if err := s.pool.TrySubmit(s.job(d, scanners)); err != nil {
			return fmt.Errorf("queue scan for %s: %w", d, err)
		}
	}
	return nil
}

func (s *Service) job(raw string, scanners []string) worker.Job {
	scanners = append([]string(nil), scanners...)
	return worker.Job{
		Name: "scan:" + raw,
		Run: func(ctx context.Context) error {
			if err := wait(ctx, s.config.StartDelay); err != nil {
				return err
			}
			return s.Scan(ctx, raw, scanners).Err
		},
	}
}

// Scan runs the named scanners against one domain in order. The first
// unknown or failing scanner ends the unit with an Error status; reports
// saved before it are kept.
func (s *Service) Scan(ctx context.Context, raw string, scanners []string) Result {
	key, err := domain.NormalizeDomain(raw)
	if err != nil {
		return s.fail(ctx, Result{Domain: raw}, fmt.Errorf("invalid domain %q: %w", raw, err))
	}
	result := Result{Domain: key}

	s.publish(ctx, domain.StatusUpdate{Domain: key, Status: domain.StatusScanning})

	asset, err := s.store.FindAsset(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return s.fail(ctx, result, &AssetNotFoundError{Domain: key})
	}
	if err != nil {
		return s.fail(ctx, result, fmt.Errorf("load asset: %w", err))
	}

	for _, name := range scanners {
		sc, err := s.registry.Lookup(name)
		if err != nil {
			return s.fail(ctx, result, err)
		}

		report, err := s.run(ctx, sc, asset)
		if err != nil {
			return s.fail(ctx, result, err)
		}

		// A report whose run finished must be recorded even if the caller
		// is gone.
		saveCtx := context.WithoutCancel(ctx)
		asset.AppendScan(string(sc.Kind()), s.now())
		if err := s.store.SaveAsset(saveCtx, asset); err != nil {
			return s.fail(ctx, result, fmt.Errorf("save asset: %w", err))
		}
		if err := s.store.SaveReport(saveCtx, report); err != nil {
			return s.fail(ctx, result, fmt.Errorf("save report: %w", err))
		}
		result.Reports = append(result.Reports, report)

		s.logger.Info("scan finished",
			logger.String("domain", key),
			logger.String("scanner", string(sc.Kind())),
			logger.Bool("flagged", report.Flagged),
		)
		s.publish(saveCtx, domain.StatusUpdate{
			Domain:  key,
			Status:  domain.StatusScanned,
			Flagged: domain.FlaggedLabel(report.Flagged),
		})
	}
	return result
}

func (s *Service) run(ctx context.Context, sc Scanner, asset *domain.Asset) (*domain.ScanReport, error) {
	start := time.Now()
	report, err := sc.Scan(ctx, asset)
	flagged := err == nil && report != nil && report.Flagged
	s.metrics.ObserveScan(string(sc.Kind()), flagged, err, time.Since(start))
	if err != nil {
		var execErr *ExecutionError
		if !errors.As(err, &execErr) {
			err = &ExecutionError{Kind: sc.Kind(), Err: err}
		}
		return nil, err
	}
	if report == nil {
		return nil, &ExecutionError{Kind: sc.Kind(), Err: errors.New("no report produced")}
	}
	return report, nil
}

func (s *Service) fail(ctx context.Context, result Result, err error) Result {
	result.Err = err
	s.logger.Warn("scan failed", logger.String("domain", result.Domain), logger.Error(err))
	s.publish(context.WithoutCancel(ctx), domain.StatusUpdate{
		Domain: result.Domain,
		Status: domain.StatusError,
		Error:  err.Error(),
	})
	return result
}

func (s *Service) publish(ctx context.Context, update domain.StatusUpdate) {
	if s.publisher != nil {
		s.publisher.PublishScanStatus(ctx, update)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
