package config

import (
	"github.com/jonesrussell/north-cloud/leadscan/internal/api"
	"github.com/jonesrussell/north-cloud/leadscan/internal/crawler"
	"github.com/jonesrussell/north-cloud/leadscan/internal/database"
	"github.com/jonesrussell/north-cloud/leadscan/internal/fetcher"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/scanner"
	"github.com/jonesrussell/north-cloud/leadscan/internal/snapshot"
	"github.com/jonesrussell/north-cloud/leadscan/internal/sse"
)

// Config is the complete leadscan configuration.
type Config struct {
	Server   api.Config      `yaml:"server"`
	Logging  logger.Config   `yaml:"logging"`
	Crawler  crawler.Config  `yaml:"crawler"`
	Fetcher  fetcher.Config  `yaml:"fetcher"`
	Scanner  scanner.Config  `yaml:"scanner"`
	SSE      sse.Config      `yaml:"sse"`
	Database database.Config `yaml:"database"`
	Snapshot snapshot.Config `yaml:"snapshot"`
}

// SetDefaults fills every zero value.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.Crawler = c.Crawler.WithDefaults()
	c.Fetcher = c.Fetcher.WithDefaults()
	c.Scanner = c.Scanner.WithDefaults()
	c.SSE = c.SSE.WithDefaults()
	c.Database = c.Database.WithDefaults()
	c.Snapshot = c.Snapshot.WithDefaults()
}
