package domain

import "time"

// ScanReport is the result of one scanner invocation.
type ScanReport struct {
	ID        string    `db:"id"         json:"id"`
	Domain    string    `db:"domain"     json:"domain"`
	Scanner   string    `db:"scanner"    json:"scanner"`
	Report    string    `db:"report"     json:"report"`
	Flagged   bool      `db:"flagged"    json:"flagged"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
