package sse

import (
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default configuration values.
const (
	DefaultEventBufferSize   = 1000
	DefaultClientBufferSize  = 100
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
	DefaultMaxClients        = 1000
)

// Config holds broker configuration.
type Config struct {
	// EventBufferSize is the size of the main event channel.
	EventBufferSize int `env:"SSE_EVENT_BUFFER_SIZE" yaml:"event_buffer_size"`
	// ClientBufferSize is the default buffer size per client.
	ClientBufferSize int `env:"SSE_CLIENT_BUFFER_SIZE" yaml:"client_buffer_size"`
	// HeartbeatInterval is both the keep-alive period and the idle time
	// after which a subscriber receives one.
	HeartbeatInterval time.Duration `env:"SSE_HEARTBEAT_INTERVAL" yaml:"heartbeat_interval"`
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `env:"SSE_SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	// MaxClients is the maximum number of concurrent clients (0 = unlimited).
	MaxClients int `env:"SSE_MAX_CLIENTS" yaml:"max_clients"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EventBufferSize:   DefaultEventBufferSize,
		ClientBufferSize:  DefaultClientBufferSize,
		HeartbeatInterval: DefaultHeartbeatInterval,
		ShutdownTimeout:   DefaultShutdownTimeout,
		MaxClients:        DefaultMaxClients,
	}
}

// WithDefaults returns a copy of the config with zero-value fields filled in.
// MaxClients is left alone since zero means unlimited.
func (c Config) WithDefaults() Config {
	if c.EventBufferSize <= 0 {
		c.EventBufferSize = DefaultEventBufferSize
	}
	if c.ClientBufferSize <= 0 {
		c.ClientBufferSize = DefaultClientBufferSize
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// BrokerOption configures a broker.
type BrokerOption func(*Broker)

// WithConfig applies a full Config to the broker.
func WithConfig(cfg Config) BrokerOption {
	return func(b *Broker) {
		b.config = cfg.WithDefaults()
	}
}

// WithHeartbeatInterval sets the heartbeat interval.
func WithHeartbeatInterval(interval time.Duration) BrokerOption {
	return func(b *Broker) {
		if interval > 0 {
			b.config.HeartbeatInterval = interval
		}
	}
}

// WithMaxClients sets the maximum number of concurrent clients.
func WithMaxClients(maxClients int) BrokerOption {
	return func(b *Broker) {
		b.config.MaxClients = maxClients
	}
}

// WithClientGauge reports the subscriber count on g.
func WithClientGauge(g prometheus.Gauge) BrokerOption {
	return func(b *Broker) {
		b.clientGauge = g
	}
}

// ClientOption configures a client subscription.
type ClientOption func(*ClientOptions)

// WithFilter sets an event filter for the client.
func WithFilter(filter EventFilter) ClientOption {
	return func(opts *ClientOptions) {
		opts.Filter = filter
	}
}

// WithBufferSize sets the client's event buffer size.
func WithBufferSize(size int) ClientOption {
	return func(opts *ClientOptions) {
		if size > 0 {
			opts.BufferSize = size
		}
	}
}

// WithEventTypes passes only the listed event types. Keep-alives always pass.
func WithEventTypes(types ...string) ClientOption {
	return WithFilter(func(event Event) bool {
		return event.Type == EventTypeKeepAlive || slices.Contains(types, event.Type)
	})
}

// WithCrawlFilter passes crawl status events only.
func WithCrawlFilter() ClientOption {
	return WithEventTypes(EventTypeCrawlStatus)
}

// WithScanFilter passes scan status events only.
func WithScanFilter() ClientOption {
	return WithEventTypes(EventTypeScanStatus)
}
