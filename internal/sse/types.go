// Package sse fans crawl and scan status updates out to Server-Sent Events
// subscribers.
package sse

import (
	"context"
	"errors"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// Event represents a Server-Sent Event.
// Format: event: <Type>\ndata: <JSON payload>\n\n
type Event struct {
	// Type is the event type (e.g., "crawl:status")
	Type string `json:"type"`
	// Data is the JSON payload (must be JSON-serializable)
	Data any `json:"data"`
	// ID is an optional event ID for client-side tracking
	ID string `json:"id,omitempty"`
}

// Event types.
const (
	EventTypeCrawlStatus = "crawl:status"
	EventTypeScanStatus  = "scan:status"

	// EventTypeKeepAlive is sent to idle subscribers and written as an SSE comment.
	EventTypeKeepAlive = "keep-alive"

	eventTypeConnected = "connected"
)

var (
	// ErrClientClosed is returned when sending to a deregistered sink.
	ErrClientClosed = errors.New("sse client closed")

	// ErrSlowClient is returned when a client's buffer is full.
	ErrSlowClient = errors.New("sse client buffer full")

	// ErrBrokerStopped is returned when publishing to a broker that is not running.
	ErrBrokerStopped = errors.New("sse broker is not running")
)

// Sink receives events for one subscriber. Send reports whether the event was
// queued for the subscriber; a filtered event is not delivered and is not an
// error. A Send error gets the sink pruned.
type Sink interface {
	Send(event Event) (bool, error)
	Close()
}

// Publisher queues events for delivery to every subscriber.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventFilter determines if an event should be sent to a client.
// Return true to send the event, false to skip.
type EventFilter func(event Event) bool

// ClientOptions configures a single SSE client connection.
type ClientOptions struct {
	// Filter is an optional event filter for this client
	Filter EventFilter
	// BufferSize is the event buffer size
	BufferSize int
}

// NewCrawlStatusEvent creates a crawl:status event.
func NewCrawlStatusEvent(update domain.StatusUpdate) Event {
	return Event{Type: EventTypeCrawlStatus, Data: update}
}

// NewScanStatusEvent creates a scan:status event.
func NewScanStatusEvent(update domain.StatusUpdate) Event {
	return Event{Type: EventTypeScanStatus, Data: update}
}
