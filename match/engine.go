// Package match finds market listings comparable to an inventory item.
package match

import (
	"context"
	"strings"

	"watchmarket/models"
)

// ListingFinder is the listing store surface the engine needs.
type ListingFinder interface {
	FindByReferenceExact(ctx context.Context, ref string) ([]models.NormalizedListing, error)
	FindByReferenceContains(ctx context.Context, ref string) ([]models.NormalizedListing, error)
	FindAPIByNameContains(ctx context.Context, needle string) ([]models.NormalizedListing, error)
}

type Engine struct {
	store ListingFinder
}

func NewEngine(store ListingFinder) *Engine {
	return &Engine{store: store}
}

// Match returns the market listings comparable to an inventory item in two
// tiers. Tier 1 pairs exact reference equality on structured sources with a
// reference substring search inside API-source names. Tier 2 runs only when
// Tier 1 finds nothing and loosens both sides: reference containment on
// structured sources, model name substring on the API source. An item
// without a reference number yields no matches and no error.
func (e *Engine) Match(ctx context.Context, item models.InventoryItem) ([]models.NormalizedListing, error) {
	if item.ReferenceNumber == nil || strings.TrimSpace(*item.ReferenceNumber) == "" {
		return nil, nil
	}
	ref := strings.TrimSpace(*item.ReferenceNumber)

	matches, err := e.store.FindByReferenceExact(ctx, ref)
	if err != nil {
		return nil, err
	}
	apiMatches, err := e.store.FindAPIByNameContains(ctx, ref)
	if err != nil {
		return nil, err
	}
	if combined := append(matches, apiMatches...); len(combined) > 0 {
		return combined, nil
	}

	matches, err = e.store.FindByReferenceContains(ctx, ref)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(item.ModelName); name != "" {
		apiMatches, err = e.store.FindAPIByNameContains(ctx, name)
		if err != nil {
			return nil, err
		}
		matches = append(matches, apiMatches...)
	}
	return matches, nil
}
