package crawler

import (
	"errors"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/feed"
	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// Default configuration values.
const (
	// DefaultStartDelay gives status subscribers time to attach before the
	// first event of a unit. It is a heuristic, not an ordering guarantee.
	DefaultStartDelay = time.Second

	// DefaultDomainTimeout bounds resolving, fetching and extracting one domain.
	DefaultDomainTimeout = 30 * time.Second

	// DefaultScheme is used for domains submitted without one.
	DefaultScheme = "https"
)

// Config holds crawl orchestration configuration.
type Config struct {
	StartDelay     time.Duration `env:"CRAWLER_START_DELAY"      yaml:"start_delay"`
	DomainTimeout  time.Duration `env:"CRAWLER_DOMAIN_TIMEOUT"   yaml:"domain_timeout"`
	MaxSitemapURLs int           `env:"CRAWLER_MAX_SITEMAP_URLS" yaml:"max_sitemap_urls"`
	DefaultScheme  string        `env:"CRAWLER_DEFAULT_SCHEME"   yaml:"default_scheme"`
	Pool           worker.Config `env:"CRAWLER_"                 yaml:"pool"`
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields. A negative StartDelay disables the delay.
func (c Config) WithDefaults() Config {
	if c.StartDelay == 0 {
		c.StartDelay = DefaultStartDelay
	}
	if c.DomainTimeout <= 0 {
		c.DomainTimeout = DefaultDomainTimeout
	}
	if c.MaxSitemapURLs <= 0 {
		c.MaxSitemapURLs = feed.DefaultMaxSitemapURLs
	}
	if c.DefaultScheme == "" {
		c.DefaultScheme = DefaultScheme
	}
	c.Pool = c.Pool.WithDefaults()
	return c
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DefaultScheme != "http" && c.DefaultScheme != "https" {
		return errors.New("crawler default_scheme must be http or https")
	}
	return c.Pool.Validate()
}
