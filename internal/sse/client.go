package sse

import (
	"context"
	"sync"
	"sync/atomic"
)

// client is the channel-backed Sink behind Subscribe.
type client struct {
	events  chan Event
	filter  EventFilter
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	closeMu sync.Mutex
}

func newClient(ctx context.Context, bufferSize int, filter EventFilter) *client {
	clientCtx, cancel := context.WithCancel(ctx)

	return &client{
		events: make(chan Event, bufferSize),
		filter: filter,
		ctx:    clientCtx,
		cancel: cancel,
	}
}

// Send queues an event without blocking. A full buffer marks a slow client.
func (c *client) Send(event Event) (bool, error) {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return false, ErrClientClosed
	}

	if c.filter != nil && !c.filter(event) {
		return false, nil
	}

	select {
	case c.events <- event:
		return true, nil
	default:
		return false, ErrSlowClient
	}
}

// Close terminates the client and closes its channel.
func (c *client) Close() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed.Load() {
		return
	}

	c.closed.Store(true)
	c.cancel()
	close(c.events)
}
