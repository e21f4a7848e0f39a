package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is a dealer-owned watch. The inventory module owns these
// rows; market intelligence only reads them.
type InventoryItem struct {
	ID              uuid.UUID `json:"id" db:"id"`
	DealerID        uuid.UUID `json:"dealer_id" db:"dealer_id"`
	ReferenceNumber *string   `json:"reference_number" db:"reference_number"`
	ModelName       string    `json:"model_name" db:"model_name"`
	Brand           string    `json:"brand" db:"brand"`
	BuyingPrice     float64   `json:"buying_price" db:"buying_price"`
	ImageURL        *string   `json:"image_url" db:"image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// InventoryFilters narrows an inventory page before matching. All fields are
// optional; empty means no constraint.
type InventoryFilters struct {
	Brand     string
	Reference string
	PriceMin  *float64
	PriceMax  *float64
	Search    string // matched against model name and reference
}
