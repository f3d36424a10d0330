package scanner

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LinkProber checks that a URL is reachable. Any error means broken.
type LinkProber interface {
	Probe(ctx context.Context, rawURL string) error
}

// linkChecker probes each distinct URL at most once per scan.
type linkChecker struct {
	prober LinkProber
	group  singleflight.Group

	mu     sync.Mutex
	broken map[string]bool
}

func newLinkChecker(prober LinkProber) *linkChecker {
	return &linkChecker{prober: prober, broken: make(map[string]bool)}
}

// isBroken probes rawURL unless its result is already known. Concurrent
// callers for the same URL share one probe.
func (l *linkChecker) isBroken(ctx context.Context, rawURL string) bool {
	l.mu.Lock()
	result, ok := l.broken[rawURL]
	l.mu.Unlock()
	if ok {
		return result
	}

	v, _, _ := l.group.Do(rawURL, func() (any, error) {
		broken := l.prober.Probe(ctx, rawURL) != nil
		l.mu.Lock()
		l.broken[rawURL] = broken
		l.mu.Unlock()
		return broken, nil
	})
	return v.(bool)
}

// checkAll probes urls with at most limit probes in flight.
func (l *linkChecker) checkAll(ctx context.Context, urls []string, limit int) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, u := range urls {
		g.Go(func() error {
			l.isBroken(gctx, u)
			return nil
		})
	}
	_ = g.Wait()
}
