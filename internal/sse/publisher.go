package sse

import (
	"context"
	"sync/atomic"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// StatusPublisher turns pipeline status updates into broker events.
type StatusPublisher struct {
	publisher Publisher
	logger    logger.Logger
	disabled  atomic.Bool
}

// NewStatusPublisher creates a status publisher on top of p.
func NewStatusPublisher(p Publisher, log logger.Logger) *StatusPublisher {
	return &StatusPublisher{publisher: p, logger: log}
}

// Disable disables event publishing (useful for CLI runs).
func (p *StatusPublisher) Disable() {
	p.disabled.Store(true)
}

// PublishCrawlStatus publishes a crawl:status event.
func (p *StatusPublisher) PublishCrawlStatus(ctx context.Context, update domain.StatusUpdate) {
	p.publish(ctx, NewCrawlStatusEvent(update), update)
}

// PublishScanStatus publishes a scan:status event.
func (p *StatusPublisher) PublishScanStatus(ctx context.Context, update domain.StatusUpdate) {
	p.publish(ctx, NewScanStatusEvent(update), update)
}

// publish is best effort: a status event is never worth failing a unit over.
func (p *StatusPublisher) publish(ctx context.Context, event Event, update domain.StatusUpdate) {
	if p.disabled.Load() {
		return
	}

	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("Failed to publish status event",
			logger.Error(err),
			logger.String("event_type", event.Type),
			logger.String("domain", update.Domain),
			logger.String("status", string(update.Status)),
		)
	}
}
