package models

import "github.com/google/uuid"

// Trend values for a SourceStat. Nil trend means no buying price was
// available to compare against (reference-grouped view).
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// SourceStat is derived per (inventory item, source) pair from the matched
// listings of that source.
type SourceStat struct {
	Source       string   `json:"source"`
	AvgPrice     float64  `json:"avg_price"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	Count        int      `json:"count"`
	Trend        *string  `json:"trend"`
	PriceDiffAbs *float64 `json:"price_diff_abs"`
	PriceDiffPct *float64 `json:"price_diff_pct"`
}

// MarketSummary aggregates all matched listings regardless of source.
type MarketSummary struct {
	AvgPrice float64 `json:"avg_price"`
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
	Count    int     `json:"count"`
}

// ComparisonResult joins one inventory item with its per-source market
// statistics. Items with no market match are still emitted, with nil stats
// and an explanatory note.
type ComparisonResult struct {
	InventoryID        uuid.UUID              `json:"inventory_id"`
	ReferenceNumber    *string                `json:"reference_number"`
	ModelName          string                 `json:"model_name"`
	Brand              string                 `json:"brand"`
	BuyingPrice        float64                `json:"buying_price"`
	MarketMatchesCount int                    `json:"market_matches_count"`
	ImageURL           *string                `json:"image_url"`
	Sources            map[string]*SourceStat `json:"sources"`
	MarketData         *MarketSummary         `json:"market_data"`
	PotentialProfit    *float64               `json:"potential_profit"`
	ProfitMarginPct    *float64               `json:"profit_margin_percentage"`
	Note               string                 `json:"note,omitempty"`
	LastUpdated        string                 `json:"last_updated"`
}

// ReferenceGroup aggregates market listings for one reference number across
// sources, independent of any dealer's inventory.
type ReferenceGroup struct {
	ReferenceNumber string                 `json:"reference_number"`
	Brand           string                 `json:"brand"`
	MatchCount      int                    `json:"match_count"`
	Sources         map[string]*SourceStat `json:"sources"`
	MarketData      *MarketSummary         `json:"market_data"`
	LastUpdated     string                 `json:"last_updated"`
}

// Page is the common pagination envelope for market responses.
type Page struct {
	Next        *int `json:"next"`
	Previous    *int `json:"previous"`
	Count       int  `json:"count"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
}

// PaginatedComparison is one page of comparison results.
type PaginatedComparison struct {
	Page
	Results []*ComparisonResult `json:"results"`
}

// PaginatedReferences is one page of reference-grouped market stats.
type PaginatedReferences struct {
	Page
	Results []*ReferenceGroup `json:"results"`
}
