package scanner

import (
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/worker"
)

// Default configuration values.
const (
	// DefaultSettlePeriod is how long the tracker scanner lets a page run
	// its on-load network activity. It is a heuristic, not a guarantee that
	// every tracker has fired.
	DefaultSettlePeriod = 5 * time.Second

	// DefaultProbeConcurrency bounds concurrent link probes within one SEO scan.
	DefaultProbeConcurrency = 8

	// DefaultBrowserTimeout bounds one browser session, settle period included.
	DefaultBrowserTimeout = 45 * time.Second

	// DefaultStartDelay mirrors the crawl start delay for scan units.
	DefaultStartDelay = time.Second
)

// Config holds scanner configuration.
type Config struct {
	StartDelay time.Duration `env:"SCANNER_START_DELAY" yaml:"start_delay"`
	Seo        SeoConfig     `yaml:"seo"`
	Tracker    TrackerConfig `yaml:"tracker"`
	Pool       worker.Config `env:"SCANNER_" yaml:"pool"`
}

// SeoConfig configures the SEO scanner.
type SeoConfig struct {
	ProbeConcurrency int `env:"SCANNER_SEO_PROBE_CONCURRENCY" yaml:"probe_concurrency"`
}

// TrackerConfig configures the tracker consent scanner.
type TrackerConfig struct {
	SettlePeriod   time.Duration `env:"SCANNER_TRACKER_SETTLE_PERIOD"   yaml:"settle_period"`
	Strict         bool          `env:"SCANNER_TRACKER_STRICT"          yaml:"strict"`
	ProxyServer    string        `env:"SCANNER_TRACKER_PROXY_SERVER"    yaml:"proxy_server"`
	ChromePath     string        `env:"SCANNER_TRACKER_CHROME_PATH"     yaml:"chrome_path"`
	BrowserTimeout time.Duration `env:"SCANNER_TRACKER_BROWSER_TIMEOUT" yaml:"browser_timeout"`
}

// WithDefaults returns a copy of the config with default values applied for
// zero-value fields. A negative StartDelay disables the delay.
func (c Config) WithDefaults() Config {
	if c.StartDelay == 0 {
		c.StartDelay = DefaultStartDelay
	}
	if c.Seo.ProbeConcurrency <= 0 {
		c.Seo.ProbeConcurrency = DefaultProbeConcurrency
	}
	if c.Tracker.SettlePeriod <= 0 {
		c.Tracker.SettlePeriod = DefaultSettlePeriod
	}
	if c.Tracker.BrowserTimeout <= 0 {
		c.Tracker.BrowserTimeout = DefaultBrowserTimeout
	}
	c.Pool = c.Pool.WithDefaults()
	return c
}
