// Package bootstrap wires leadscan's components together.
//
// The httpd process starts in phases:
//   - Phase 1: Config & Logger - load configuration and create the logger
//   - Phase 2: Storage - open the in-memory store or PostgreSQL
//   - Phase 3: Services - fetcher, resolver, snapshot cache, broker,
//     crawler and scanners
//   - Phase 4: Server - create and start the HTTP server
//   - Phase 5: Run - wait for an interrupt signal or a server error
package bootstrap

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/leadscan/internal/config"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// Deps holds the configuration and the root logger.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
}

// Overrides are command-line settings applied on top of the loaded config.
type Overrides struct {
	Debug    bool
	LogLevel string
}

// NewDeps loads the configuration at path and creates the logger.
func NewDeps(path string, o Overrides) (*Deps, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.Debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Deps{Config: cfg, Logger: log}, nil
}
