// Package snapshot caches the pages fetched by a crawl so scanners can reuse
// them without fetching the site again.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// Default configuration values.
const (
	defaultTTL          = 30 * time.Minute
	defaultMaxSizeMB    = 256
	defaultShards       = 64
	defaultMaxEntrySize = 512 << 10
)

// ErrMiss is returned when no snapshot exists for a domain.
var ErrMiss = errors.New("snapshot not cached")

// Config holds snapshot cache configuration.
type Config struct {
	TTL       time.Duration `env:"SNAPSHOT_TTL"         yaml:"ttl"`
	MaxSizeMB int           `env:"SNAPSHOT_MAX_SIZE_MB" yaml:"max_size_mb"`
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = defaultTTL
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = defaultMaxSizeMB
	}
	return c
}

// Cache stores page snapshots keyed by domain. Entries expire after the TTL
// and the oldest are evicted when the size limit is hit.
type Cache struct {
	store *bigcache.BigCache
}

// New creates a cache. The context stops bigcache's cleanup goroutine.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	cfg = cfg.WithDefaults()

	store, err := bigcache.New(ctx, bigcache.Config{
		Shards:             defaultShards,
		LifeWindow:         cfg.TTL,
		CleanWindow:        cfg.TTL / 2,
		MaxEntriesInWindow: 1024,
		MaxEntrySize:       defaultMaxEntrySize,
		HardMaxCacheSize:   cfg.MaxSizeMB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot cache: %w", err)
	}

	return &Cache{store: store}, nil
}

// Put stores the pages for a domain, replacing any previous snapshot.
func (c *Cache) Put(domainName string, pages []domain.Page) error {
	data, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.store.Set(domainName, data); err != nil {
		return fmt.Errorf("store snapshot for %s: %w", domainName, err)
	}
	return nil
}

// Get returns the cached pages for a domain or ErrMiss.
func (c *Cache) Get(domainName string) ([]domain.Page, error) {
	data, err := c.store.Get(domainName)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot for %s: %w", domainName, err)
	}

	var pages []domain.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("decode snapshot for %s: %w", domainName, err)
	}
	return pages, nil
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	return c.store.Len()
}

// Close releases the cache.
func (c *Cache) Close() error {
	return c.store.Close()
}
