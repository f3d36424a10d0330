package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// Start runs the HTTP service. It blocks until interrupted.
func Start(ctx context.Context, deps *Deps) error {
	defer func() { _ = deps.Logger.Sync() }()

	// Phase 2: storage
	storageComponents, err := SetupStorage(ctx, deps.Config.Database, deps.Logger)
	if err != nil {
		return fmt.Errorf("setup storage: %w", err)
	}
	defer func() {
		if closeErr := storageComponents.Close(); closeErr != nil {
			deps.Logger.Error("Failed to close store", logger.Error(closeErr))
		}
	}()

	// Phase 3: services
	services, err := SetupServices(ctx, deps, storageComponents.Store)
	if err != nil {
		return fmt.Errorf("setup services: %w", err)
	}
	// Units outlive requests; they stop when the pools drain.
	if startErr := services.Start(context.WithoutCancel(ctx)); startErr != nil {
		_ = services.Stop(context.Background())
		return startErr
	}

	// Phase 4: server
	server := SetupHTTPServer(deps, services, storageComponents.Store)

	// Phase 5: run
	return RunUntilInterrupt(ctx, deps.Logger, server, services)
}
