package models

import "time"

// Market data sources. The three marketplaces expose rendered HTML and carry
// a structured (best-effort) reference number; the API source only has
// free-text listing names.
const (
	SourceAPI          = "api_source"
	SourceMarketplaceA = "marketplace_a"
	SourceMarketplaceB = "marketplace_b"
	SourceMarketplaceC = "marketplace_c"
)

// StructuredSources are the sources whose listings carry a reference_number
// column usable for direct matching.
var StructuredSources = []string{SourceMarketplaceA, SourceMarketplaceB, SourceMarketplaceC}

// RawListing is what a collector hands to the normalization step. It is never
// persisted as-is; fields beyond Title and ExternalID are best-effort.
type RawListing struct {
	Source          string  `json:"source"`
	ExternalID      string  `json:"external_id"`
	Title           string  `json:"title"`
	ReferenceNumber string  `json:"reference_number,omitempty"` // only when the source exposes it structurally
	Price           float64 `json:"price,omitempty"`
	RawPrice        string  `json:"raw_price,omitempty"` // unparsed price text, used when Price is zero
	Condition       string  `json:"condition,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	ListingURL      string  `json:"listing_url,omitempty"`
}

// NormalizedListing is the persisted market listing record. (Source,
// ExternalID) is globally unique; re-ingesting the same pair is a no-op.
type NormalizedListing struct {
	ID              int64     `json:"id" db:"id"`
	Source          string    `json:"source" db:"source"`
	ExternalID      string    `json:"external_id" db:"external_id"`
	Name            string    `json:"name" db:"name"`
	Brand           string    `json:"brand" db:"brand"`
	ReferenceNumber *string   `json:"reference_number" db:"reference_number"`
	Price           float64   `json:"price" db:"price"`
	Condition       *string   `json:"condition" db:"condition"`
	ImageURL        *string   `json:"image_url" db:"image_url"`
	ListingURL      *string   `json:"listing_url" db:"listing_url"`
	ScrapedAt       time.Time `json:"scraped_at" db:"scraped_at"`
}
