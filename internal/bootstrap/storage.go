package bootstrap

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/leadscan/internal/database"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

// StorageComponents holds the record store and its release function.
type StorageComponents struct {
	Store storage.Store
	Close func() error
}

// SetupStorage opens the store selected by cfg.Driver.
func SetupStorage(ctx context.Context, cfg database.Config, log logger.Logger) (*StorageComponents, error) {
	cfg = cfg.WithDefaults()

	if cfg.Driver == database.DriverMemory {
		log.Info("Using in-memory store")
		return &StorageComponents{
			Store: storage.NewMemoryStore(),
			Close: func() error { return nil },
		}, nil
	}

	db, err := database.NewPostgresConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.MigrateOnStart {
		if migrateErr := database.MigrateUp(db, log); migrateErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", migrateErr)
		}
	}

	log.Info("Connected to PostgreSQL",
		logger.String("host", cfg.Host),
		logger.String("database", cfg.DBName),
	)
	store := database.NewStore(db)
	return &StorageComponents{Store: store, Close: store.Close}, nil
}
