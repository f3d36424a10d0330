// Package worker provides the bounded pool that runs per-domain crawl and scan
// units.
package worker

import (
	"errors"
	"time"
)

const (
	// DefaultPoolSize is the default number of concurrent workers.
	DefaultPoolSize = 10

	// DefaultQueueSize is the default number of units that may wait for a worker.
	DefaultQueueSize = 100

	// DefaultDrainTimeout is the default timeout for graceful shutdown.
	DefaultDrainTimeout = 30 * time.Second

	// MinPoolSize is the minimum allowed pool size.
	MinPoolSize = 1

	// MaxPoolSize is the maximum allowed pool size.
	MaxPoolSize = 100
)

// Config holds configuration for a worker pool.
type Config struct {
	// PoolSize is the number of concurrent workers.
	PoolSize int `env:"POOL_SIZE" yaml:"pool_size"`

	// QueueSize bounds how many submitted units may wait for a free worker.
	QueueSize int `env:"QUEUE_SIZE" yaml:"queue_size"`

	// DrainTimeout is the maximum time to wait for workers to finish during shutdown.
	DrainTimeout time.Duration `env:"DRAIN_TIMEOUT" yaml:"drain_timeout"`

	// JobTimeout bounds a single unit. Zero means units carry their own deadline.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" yaml:"job_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:     DefaultPoolSize,
		QueueSize:    DefaultQueueSize,
		DrainTimeout: DefaultDrainTimeout,
	}
}

// WithDefaults returns a copy of the config with zero-value fields filled in.
func (c Config) WithDefaults() Config {
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.QueueSize == 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.DrainTimeout == 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.PoolSize < MinPoolSize {
		return errors.New("pool size must be at least 1")
	}
	if c.PoolSize > MaxPoolSize {
		return errors.New("pool size cannot exceed 100")
	}
	if c.QueueSize < 0 {
		return errors.New("queue size cannot be negative")
	}
	if c.DrainTimeout <= 0 {
		return errors.New("drain timeout must be positive")
	}
	if c.JobTimeout < 0 {
		return errors.New("job timeout cannot be negative")
	}
	return nil
}
