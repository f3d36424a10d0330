package sse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// subscription pairs a sink with the time an event was last queued for it.
// Events rejected by the sink's filter do not count.
type subscription struct {
	id       string
	sink     Sink
	lastSent atomic.Int64
}

func (s *subscription) touch(at time.Time) {
	s.lastSent.Store(at.UnixNano())
}

func (s *subscription) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSent.Load()))
}

// Broker owns the subscriber registry. It is created by the application and
// passed to producers and the HTTP layer; there is no package-level instance.
type Broker struct {
	logger      logger.Logger
	config      Config
	clientGauge prometheus.Gauge
	now         func() time.Time

	mu   sync.RWMutex
	subs map[string]*subscription

	// Event distribution
	publish chan Event
	running atomic.Bool

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBroker creates a new SSE broker.
func NewBroker(log logger.Logger, opts ...BrokerOption) *Broker {
	b := &Broker{
		logger: log,
		config: DefaultConfig(),
		now:    time.Now,
		subs:   make(map[string]*subscription),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.publish = make(chan Event, b.config.EventBufferSize)

	return b
}

// Start begins the broadcast and heartbeat loops.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return errors.New("sse broker already started")
	}
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.mu.Unlock()
	b.running.Store(true)

	b.wg.Add(2)
	go b.broadcastLoop()
	go b.heartbeatLoop()

	b.logger.Info("SSE broker started",
		logger.Int("event_buffer_size", b.config.EventBufferSize),
		logger.Int("client_buffer_size", b.config.ClientBufferSize),
		logger.Duration("heartbeat_interval", b.config.HeartbeatInterval),
		logger.Int("max_clients", b.config.MaxClients),
	)

	return nil
}

// Stop gracefully shuts down the broker and disconnects every subscriber.
func (b *Broker) Stop() error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("SSE broker stopped gracefully")
	case <-time.After(b.config.ShutdownTimeout):
		b.logger.Warn("SSE broker shutdown timeout exceeded")
	}

	b.disconnectAll()
	return nil
}

// Publish queues an event for the broadcast loop, waiting for buffer space
// until ctx ends.
func (b *Broker) Publish(ctx context.Context, event Event) error {
	if !b.running.Load() {
		return ErrBrokerStopped
	}

	select {
	case b.publish <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	case <-b.ctx.Done():
		return ErrBrokerStopped
	}
}

// Register adds a sink and returns its subscriber ID.
func (b *Broker) Register(sink Sink) string {
	sub := &subscription{id: uuid.NewString(), sink: sink}
	sub.touch(b.now())

	b.mu.Lock()
	b.subs[sub.id] = sub
	count := len(b.subs)
	b.mu.Unlock()

	b.reportClients(count)
	b.logger.Debug("Client subscribed",
		logger.String("client_id", sub.id),
		logger.Int("total_clients", count),
	)

	return sub.id
}

// Deregister removes and closes a subscriber. Unknown IDs are ignored.
func (b *Broker) Deregister(id string) {
	b.mu.Lock()
	sub, exists := b.subs[id]
	if exists {
		delete(b.subs, id)
	}
	count := len(b.subs)
	b.mu.Unlock()

	if !exists {
		return
	}

	sub.sink.Close()
	b.reportClients(count)
	b.logger.Debug("Client disconnected",
		logger.String("client_id", id),
		logger.Int("total_clients", count),
	)
}

// Subscribe registers a channel-backed subscriber that lives until ctx ends
// or cleanup is called. When the client limit is reached the returned
// channel is already closed.
func (b *Broker) Subscribe(ctx context.Context, opts ...ClientOption) (events <-chan Event, cleanup func()) {
	clientOpts := ClientOptions{BufferSize: b.config.ClientBufferSize}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	if limit := b.config.MaxClients; limit > 0 && b.ClientCount() >= limit {
		b.logger.Warn("Max SSE clients reached, rejecting new connection",
			logger.Int("max_clients", limit),
		)
		closed := make(chan Event)
		close(closed)
		return closed, func() {}
	}

	c := newClient(ctx, clientOpts.BufferSize, clientOpts.Filter)
	id := b.Register(c)

	go func() {
		<-c.ctx.Done()
		b.Deregister(id)
	}()

	return c.events, func() { b.Deregister(id) }
}

// Broadcast sends event synchronously to a snapshot of the current
// subscribers, prunes every subscriber whose send failed and returns the
// number of subscribers the event was queued for.
func (b *Broker) Broadcast(event Event) int {
	subs := b.snapshot()
	now := b.now()

	delivered := 0
	var failed []string
	for _, sub := range subs {
		ok, err := sub.sink.Send(event)
		if err != nil {
			b.logger.Warn("Send failed, dropping subscriber",
				logger.String("client_id", sub.id),
				logger.String("event_type", event.Type),
				logger.Error(err),
			)
			failed = append(failed, sub.id)
			continue
		}
		if !ok {
			continue
		}
		sub.touch(now)
		delivered++
	}

	for _, id := range failed {
		b.Deregister(id)
	}

	if len(subs) > 0 {
		b.logger.Debug("Event broadcast",
			logger.String("event_type", event.Type),
			logger.Int("sent", delivered),
			logger.Int("dropped", len(failed)),
		)
	}

	return delivered
}

// KeepAlive sends a keep-alive to every subscriber idle for at least the
// heartbeat interval and prunes those whose send fails. It returns the
// number of keep-alives delivered.
func (b *Broker) KeepAlive() int {
	now := b.now()
	keepAlive := Event{Type: EventTypeKeepAlive}

	sent := 0
	for _, sub := range b.snapshot() {
		if sub.idleSince(now) < b.config.HeartbeatInterval {
			continue
		}
		ok, err := sub.sink.Send(keepAlive)
		if err != nil {
			b.logger.Debug("Keep-alive failed, dropping subscriber",
				logger.String("client_id", sub.id),
				logger.Error(err),
			)
			b.Deregister(sub.id)
			continue
		}
		if ok {
			sub.touch(now)
			sent++
		}
	}
	return sent
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) snapshot() []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	return subs
}

func (b *Broker) broadcastLoop() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.publish:
			b.Broadcast(event)
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *Broker) heartbeatLoop() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.KeepAlive()
		case <-b.ctx.Done():
			return
		}
	}
}

func (b *Broker) disconnectAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[string]*subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.sink.Close()
	}
	b.reportClients(0)

	b.logger.Info("All SSE clients disconnected", logger.Int("count", len(subs)))
}

func (b *Broker) reportClients(n int) {
	if b.clientGauge != nil {
		b.clientGauge.Set(float64(n))
	}
}
