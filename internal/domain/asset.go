// Package domain holds the records that flow through the crawl and scan
// pipelines.
package domain

import "time"

// Asset is the persisted record for one crawled domain.
type Asset struct {
	ID        int64       `db:"id"         json:"id"`
	Domain    string      `db:"domain"     json:"domain"`
	URLs      []string    `db:"-"          json:"urls"`
	Emails    []string    `db:"-"          json:"emails"`
	Phones    []string    `db:"-"          json:"phones"`
	ScannedBy []ScanEntry `db:"-"          json:"scannedBy"`
	Emailed   bool        `db:"emailed"    json:"emailed"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// ScanEntry records one scanner run against an asset.
type ScanEntry struct {
	Scanner   string    `json:"scanner"`
	ScannedAt time.Time `json:"datetime"`
}

// NewPlaceholderAsset returns the empty record persisted for domains whose
// crawl timed out or failed.
func NewPlaceholderAsset(domain string) *Asset {
	return &Asset{
		Domain: domain,
		URLs:   []string{},
		Emails: []string{},
		Phones: []string{},
	}
}

// AppendScan adds a scan entry to the history.
func (a *Asset) AppendScan(scanner string, at time.Time) {
	a.ScannedBy = append(a.ScannedBy, ScanEntry{Scanner: scanner, ScannedAt: at.UTC()})
}

// Page is one fetched document.
type Page struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

// CrawledAsset is the in-memory working record produced by a crawl. Pages
// are never persisted with the asset.
type CrawledAsset struct {
	Asset *Asset
	Pages []Page
}
