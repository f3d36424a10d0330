package sse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// recordingSink captures events; fail makes every Send return an error.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
	fail   bool
	closed bool
}

func (s *recordingSink) Send(event Event) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return false, errors.New("connection reset")
	}
	s.events = append(s.events, event)
	return true, nil
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func (s *recordingSink) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestBroker(t *testing.T, opts ...BrokerOption) *Broker {
	t.Helper()
	return NewBroker(logger.NewNop(), opts...)
}

func TestBroker_StartStop(t *testing.T) {
	broker := newTestBroker(t)

	require.NoError(t, broker.Start(context.Background()))
	require.Error(t, broker.Start(context.Background()))
	require.NoError(t, broker.Stop())

	err := broker.Publish(context.Background(), Event{Type: EventTypeCrawlStatus})
	assert.ErrorIs(t, err, ErrBrokerStopped)
}

func TestBroker_BroadcastPrunesFailedSink(t *testing.T) {
	broker := newTestBroker(t)

	live := []*recordingSink{{}, {}, {}}
	for _, s := range live {
		broker.Register(s)
	}
	dead := &recordingSink{fail: true}
	broker.Register(dead)

	update := domain.StatusUpdate{Domain: "x.com", Status: domain.StatusCompleted}
	delivered := broker.Broadcast(NewCrawlStatusEvent(update))

	assert.Equal(t, 3, delivered)
	assert.Equal(t, 3, broker.ClientCount())
	assert.True(t, dead.isClosed())
	for _, s := range live {
		events := s.received()
		require.Len(t, events, 1)
		assert.Equal(t, update, events[0].Data)
		assert.False(t, s.isClosed())
	}
}

func TestBroker_BroadcastWithNoSubscribers(t *testing.T) {
	broker := newTestBroker(t)

	assert.Equal(t, 0, broker.Broadcast(Event{Type: EventTypeScanStatus}))
}

func TestBroker_DeregisterUnknownIsNoop(t *testing.T) {
	broker := newTestBroker(t)
	sink := &recordingSink{}
	id := broker.Register(sink)

	broker.Deregister("missing")
	assert.Equal(t, 1, broker.ClientCount())

	broker.Deregister(id)
	assert.Equal(t, 0, broker.ClientCount())
	assert.True(t, sink.isClosed())
}

func TestBroker_KeepAliveOnlyForIdleSubscribers(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	broker := newTestBroker(t, WithHeartbeatInterval(15*time.Second))
	broker.now = func() time.Time { return now }

	idle := &recordingSink{}
	broker.Register(idle)

	now = now.Add(10 * time.Second)
	busy := &recordingSink{}
	broker.Register(busy)

	now = now.Add(6 * time.Second)
	assert.Equal(t, 1, broker.KeepAlive())

	require.Len(t, idle.received(), 1)
	assert.Equal(t, EventTypeKeepAlive, idle.received()[0].Type)
	assert.Empty(t, busy.received())
}

func TestBroker_KeepAliveReachesSubscriberThatOnlySeesFilteredEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	broker := newTestBroker(t, WithHeartbeatInterval(15*time.Second))
	broker.now = func() time.Time { return now }

	events, cleanup := broker.Subscribe(context.Background(), WithCrawlFilter())
	defer cleanup()

	keepAlives := 0
	for range 6 {
		now = now.Add(10 * time.Second)
		assert.Equal(t, 0, broker.Broadcast(NewScanStatusEvent(
			domain.StatusUpdate{Domain: "x.com", Status: domain.StatusScanning},
		)))
		keepAlives += broker.KeepAlive()
	}

	require.GreaterOrEqual(t, keepAlives, 1)
	require.Len(t, events, keepAlives)
	for range keepAlives {
		assert.Equal(t, EventTypeKeepAlive, (<-events).Type)
	}
}

func TestBroker_KeepAlivePrunesFailedSink(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	broker := newTestBroker(t, WithHeartbeatInterval(time.Second))
	broker.now = func() time.Time { return now }

	dead := &recordingSink{fail: true}
	broker.Register(dead)
	broker.Register(&recordingSink{})

	now = now.Add(2 * time.Second)

	assert.Equal(t, 1, broker.KeepAlive())
	assert.Equal(t, 1, broker.ClientCount())
	assert.True(t, dead.isClosed())
}

func TestBroker_PublishSubscribe(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()
	require.NoError(t, broker.Start(ctx))
	defer broker.Stop()

	events, cleanup := broker.Subscribe(ctx)
	defer cleanup()

	update := domain.StatusUpdate{Domain: "x.com", Status: domain.StatusCrawling}
	require.NoError(t, broker.Publish(ctx, NewCrawlStatusEvent(update)))

	select {
	case received := <-events:
		assert.Equal(t, EventTypeCrawlStatus, received.Type)
		assert.Equal(t, update, received.Data)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestBroker_EventTypeFilter(t *testing.T) {
	broker := newTestBroker(t)
	ctx := context.Background()

	crawlEvents, cleanupCrawl := broker.Subscribe(ctx, WithCrawlFilter())
	defer cleanupCrawl()
	scanEvents, cleanupScan := broker.Subscribe(ctx, WithScanFilter())
	defer cleanupScan()

	broker.Broadcast(NewScanStatusEvent(domain.StatusUpdate{Domain: "x.com", Status: domain.StatusScanning}))
	broker.Broadcast(NewCrawlStatusEvent(domain.StatusUpdate{Domain: "x.com", Status: domain.StatusCrawling}))

	got := <-crawlEvents
	assert.Equal(t, EventTypeCrawlStatus, got.Type)
	assert.Empty(t, crawlEvents)

	got = <-scanEvents
	assert.Equal(t, EventTypeScanStatus, got.Type)
	assert.Empty(t, scanEvents)
}

func TestBroker_SlowClientDropped(t *testing.T) {
	broker := newTestBroker(t)

	events, cleanup := broker.Subscribe(context.Background(), WithBufferSize(1))
	defer cleanup()

	broker.Broadcast(Event{Type: EventTypeCrawlStatus})
	broker.Broadcast(Event{Type: EventTypeCrawlStatus})

	assert.Equal(t, 0, broker.ClientCount())

	<-events
	_, ok := <-events
	assert.False(t, ok, "channel should be closed after the client is dropped")
}

func TestBroker_MaxClients(t *testing.T) {
	broker := newTestBroker(t, WithMaxClients(1))
	ctx := context.Background()

	_, cleanup := broker.Subscribe(ctx)
	defer cleanup()

	rejected, _ := broker.Subscribe(ctx)
	_, ok := <-rejected
	assert.False(t, ok)
	assert.Equal(t, 1, broker.ClientCount())
}

func TestBroker_SubscriptionEndsWithContext(t *testing.T) {
	broker := newTestBroker(t)
	ctx, cancel := context.WithCancel(context.Background())

	events, _ := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.ClientCount())

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}
	assert.Eventually(t, func() bool { return broker.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroker_ConcurrentRegisterAndBroadcast(t *testing.T) {
	broker := newTestBroker(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			id := broker.Register(&recordingSink{})
			broker.Deregister(id)
		}()
		go func() {
			defer wg.Done()
			broker.Broadcast(Event{Type: EventTypeScanStatus})
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, broker.ClientCount())
}
