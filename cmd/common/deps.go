// Package common holds helpers shared by the leadscan subcommands.
package common

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/leadscan/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/leadscan/internal/config"
)

// ConfigPath returns the --config value or the first default location that
// exists. An empty result means defaults and environment only.
func ConfigPath() string {
	if path := viper.GetString("config"); path != "" {
		return path
	}
	return config.FindConfigFile("config.yml", "config.yaml", "config/config.yml")
}

// NewDeps loads configuration and creates the logger from the global flags.
func NewDeps() (*bootstrap.Deps, error) {
	deps, err := bootstrap.NewDeps(ConfigPath(), bootstrap.Overrides{
		Debug:    viper.GetBool("debug"),
		LogLevel: viper.GetString("log_level"),
	})
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}
	return deps, nil
}

// Pipeline is the storage and services a one-shot command runs on.
type Pipeline struct {
	Deps     *bootstrap.Deps
	Storage  *bootstrap.StorageComponents
	Services *bootstrap.Services
}

// NewPipeline builds the services without starting the pools or the
// broker. Status events are disabled.
func NewPipeline(ctx context.Context) (*Pipeline, error) {
	deps, err := NewDeps()
	if err != nil {
		return nil, err
	}

	storageComponents, err := bootstrap.SetupStorage(ctx, deps.Config.Database, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	services, err := bootstrap.SetupServices(ctx, deps, storageComponents.Store)
	if err != nil {
		_ = storageComponents.Close()
		return nil, fmt.Errorf("setup services: %w", err)
	}
	services.Publisher.Disable()

	return &Pipeline{Deps: deps, Storage: storageComponents, Services: services}, nil
}

// Close releases the pipeline.
func (p *Pipeline) Close() {
	_ = p.Services.Close()
	_ = p.Storage.Close()
	_ = p.Deps.Logger.Sync()
}
