package database

import (
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

// Store combines the repositories into a storage.Store.
type Store struct {
	*AssetRepository
	*ReportRepository
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// NewStore wraps db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		AssetRepository:  NewAssetRepository(db),
		ReportRepository: NewReportRepository(db),
		db:               db,
	}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
