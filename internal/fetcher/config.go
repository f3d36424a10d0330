package fetcher

import "time"

// Default configuration values.
const (
	defaultUserAgent      = "LeadScan-Fetcher/1.0"
	defaultRequestTimeout = 10 * time.Second
	defaultProbeTimeout   = 5 * time.Second
	defaultMaxBodyBytes   = 10 << 20
	defaultRobotsCacheTTL = time.Hour
)

// Config holds fetcher configuration.
type Config struct {
	UserAgent      string        `env:"FETCHER_USER_AGENT"       yaml:"user_agent"`
	RequestTimeout time.Duration `env:"FETCHER_REQUEST_TIMEOUT"  yaml:"request_timeout"`
	ProbeTimeout   time.Duration `env:"FETCHER_PROBE_TIMEOUT"    yaml:"probe_timeout"`
	MaxBodyBytes   int64         `env:"FETCHER_MAX_BODY_BYTES"   yaml:"max_body_bytes"`
	RobotsCacheTTL time.Duration `env:"FETCHER_ROBOTS_CACHE_TTL" yaml:"robots_cache_ttl"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.RobotsCacheTTL <= 0 {
		c.RobotsCacheTTL = defaultRobotsCacheTTL
	}
	return c
}
