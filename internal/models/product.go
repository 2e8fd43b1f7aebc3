package models

import (
	"strings"
	"time"
)

// NotAvailable is the sentinel used when a field could not be extracted.
// It is distinct from an empty string, which never reaches a returned record.
const NotAvailable = "N/A"

// Product is one extracted search-result listing. Records are immutable once
// returned: the collectors build them, the consumer only reads them.
type Product struct {
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Image     string    `json:"image"`
	Source    string    `json:"source"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Sources for the two acquisition paths.
const (
	SourceWeb    = "web"
	SourceScreen = "screen"
)

// IsImageURL reports whether the record's image field points at a remote URL
// rather than a local screenshot crop on disk.
func (p *Product) IsImageURL() bool {
	return strings.HasPrefix(p.Image, "http://") || strings.HasPrefix(p.Image, "https://")
}

// SearchResult wraps a batch outcome for the API layer.
type SearchResult struct {
	Products []Product `json:"products"`
	Notice   string    `json:"notice,omitempty"`
}
