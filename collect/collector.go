// Package collect harvests raw listings from the configured market sources
// and normalizes them for persistence. One collector per source; collectors
// share no state and are safe to run concurrently.
package collect

import (
	"context"
	"fmt"

	"watchmarket/config"
	"watchmarket/httputil"
	"watchmarket/models"
)

// Collector produces a finite batch of raw listings from one source. A fresh
// call starts over; there is no shared cursor. A single malformed item must
// never fail the batch: it is skipped and reported in the malformed count.
type Collector interface {
	ID() string
	Collect(ctx context.Context, maxItems int) (items []models.RawListing, malformed int, err error)
}

// New builds the collector for one source config.
func New(src *config.SourceConfig, cfg *config.Config, clients *httputil.Clients) (Collector, error) {
	switch src.Collector {
	case "api":
		return NewAPICollector(src, cfg.MarketAPI, clients.API), nil
	case "browser":
		parse, err := cardParserFor(src.ID)
		if err != nil {
			return nil, err
		}
		return NewScrollCollector(src, NewPlaywrightRenderer(cfg.Proxy.URL), parse, clients.Scraping), nil
	default:
		return nil, fmt.Errorf("unknown collector type %q for source %s", src.Collector, src.ID)
	}
}

// cardParser extracts listing cards from rendered marketplace HTML. It
// returns the cards parsed so far plus the number of cards skipped as
// malformed. Parsers are pure and re-run against the full page each pass.
type cardParser func(html string) ([]models.RawListing, int)

func cardParserFor(sourceID string) (cardParser, error) {
	switch sourceID {
	case models.SourceMarketplaceA:
		return parseMarketplaceACards, nil
	case models.SourceMarketplaceB:
		return parseMarketplaceBCards, nil
	case models.SourceMarketplaceC:
		return parseMarketplaceCCards, nil
	default:
		return nil, fmt.Errorf("no card parser for source %s", sourceID)
	}
}
