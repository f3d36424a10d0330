package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/storage"
)

const assetSelectColumns = `id, domain, urls, emails, phones, scanned_by, emailed, created_at, updated_at`

// assetRow is the storage shape of domain.Asset; list fields live in JSONB.
type assetRow struct {
	ID        int64          `db:"id"`
	Domain    string         `db:"domain"`
	URLs      types.JSONText `db:"urls"`
	Emails    types.JSONText `db:"emails"`
	Phones    types.JSONText `db:"phones"`
	ScannedBy types.JSONText `db:"scanned_by"`
	Emailed   bool           `db:"emailed"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func newAssetRow(a *domain.Asset) (*assetRow, error) {
	row := &assetRow{ID: a.ID, Domain: a.Domain, Emailed: a.Emailed}

	var err error
	if row.URLs, err = toJSON(nonNil(a.URLs)); err != nil {
		return nil, err
	}
	if row.Emails, err = toJSON(nonNil(a.Emails)); err != nil {
		return nil, err
	}
	if row.Phones, err = toJSON(nonNil(a.Phones)); err != nil {
		return nil, err
	}
	scans := a.ScannedBy
	if scans == nil {
		scans = []domain.ScanEntry{}
	}
	if row.ScannedBy, err = toJSON(scans); err != nil {
		return nil, err
	}
	return row, nil
}

func (r *assetRow) toAsset() (*domain.Asset, error) {
	a := &domain.Asset{
		ID:        r.ID,
		Domain:    r.Domain,
		Emailed:   r.Emailed,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	for _, col := range []struct {
		name string
		text types.JSONText
		dst  any
	}{
		{"urls", r.URLs, &a.URLs},
		{"emails", r.Emails, &a.Emails},
		{"phones", r.Phones, &a.Phones},
		{"scanned_by", r.ScannedBy, &a.ScannedBy},
	} {
		if len(col.text) == 0 {
			continue
		}
		if err := col.text.Unmarshal(col.dst); err != nil {
			return nil, fmt.Errorf("decode %s for %s: %w", col.name, r.Domain, err)
		}
	}
	return a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// AssetRepository handles the assets table.
type AssetRepository struct {
	db *sqlx.DB
}

// NewAssetRepository creates a new asset repository.
func NewAssetRepository(db *sqlx.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// InsertAsset inserts the asset unless its domain exists. ON CONFLICT makes
// the existence check and the write a single statement.
func (r *AssetRepository) InsertAsset(ctx context.Context, asset *domain.Asset) (bool, error) {
	row, err := newAssetRow(asset)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO assets (domain, urls, emails, phones, scanned_by, emailed)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (domain) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	scanErr := r.db.QueryRowxContext(ctx, query,
		row.Domain, row.URLs, row.Emails, row.Phones, row.ScannedBy, row.Emailed,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return false, nil
	}
	if scanErr != nil {
		return false, fmt.Errorf("failed to insert asset: %w", scanErr)
	}

	return true, nil
}

// SaveAsset updates the mutable columns of an existing asset.
func (r *AssetRepository) SaveAsset(ctx context.Context, asset *domain.Asset) error {
	row, err := newAssetRow(asset)
	if err != nil {
		return err
	}

	query := `
		UPDATE assets
		SET urls = $2, emails = $3, phones = $4, scanned_by = $5, emailed = $6, updated_at = NOW()
		WHERE domain = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		row.Domain, row.URLs, row.Emails, row.Phones, row.ScannedBy, row.Emailed,
	)
	return execRequireRows(result, err, fmt.Errorf("asset %s: %w", asset.Domain, storage.ErrNotFound))
}

// FindAsset returns the asset for a domain.
func (r *AssetRepository) FindAsset(ctx context.Context, domainName string) (*domain.Asset, error) {
	query := `SELECT ` + assetSelectColumns + ` FROM assets WHERE domain = $1`

	var row assetRow
	if err := r.db.GetContext(ctx, &row, query, domainName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select asset: %w", err)
	}

	return row.toAsset()
}

// ListAssets returns every asset, newest first.
func (r *AssetRepository) ListAssets(ctx context.Context) ([]*domain.Asset, error) {
	query := `SELECT ` + assetSelectColumns + ` FROM assets ORDER BY created_at DESC, id DESC`

	var rows []assetRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	assets := make([]*domain.Asset, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toAsset()
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}
