package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonesrussell/north-cloud/leadscan/internal/api"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// RunUntilInterrupt serves until a signal, a server error or ctx ends, then
// shuts everything down.
func RunUntilInterrupt(ctx context.Context, log logger.Logger, server *api.Server, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := server.StartAsync()

	var serveErr error
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			log.Error("Server error", logger.Error(err))
			serveErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	return errors.Join(serveErr, Shutdown(log, server, services))
}

// Shutdown stops the HTTP server first so no new units arrive, then drains
// the services.
func Shutdown(log logger.Logger, server *api.Server, services *Services) error {
	// The parent context may already be cancelled.
	ctx := context.Background()

	var errs []error
	log.Info("Stopping HTTP server")
	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := services.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		log.Info("Shutdown complete")
	}
	return errors.Join(errs...)
}
