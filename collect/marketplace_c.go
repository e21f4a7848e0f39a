package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"watchmarket/extract"
	"watchmarket/models"
)

// Marketplace C lays its results out as li.watch-tile elements. The tile id
// doubles as the external id, the price is split into currency and amount
// spans, and a condition badge is present on most tiles.
func parseMarketplaceCCards(html string) ([]models.RawListing, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0
	}

	var items []models.RawListing
	var malformed int

	doc.Find("li.watch-tile").Each(func(_ int, card *goquery.Selection) {
		id := strings.TrimSpace(card.AttrOr("id", ""))
		id = strings.TrimPrefix(id, "tile-")
		title := strings.TrimSpace(card.Find("div.tile-title").First().Text())
		if id == "" || title == "" {
			malformed++
			return
		}

		currency := strings.TrimSpace(card.Find("span.currency").First().Text())
		amount := strings.TrimSpace(card.Find("span.amount").First().Text())
		raw := strings.TrimSpace(currency + " " + amount)

		item := models.RawListing{
			Source:     models.SourceMarketplaceC,
			ExternalID: id,
			Title:      title,
			RawPrice:   raw,
			Price:      extract.ParsePrice(amount),
			Condition:  strings.TrimSpace(card.Find("span.condition-badge").First().Text()),
			ListingURL: card.Find("a").First().AttrOr("href", ""),
			ImageURL:   card.Find("img.tile-image").First().AttrOr("src", ""),
		}
		items = append(items, item)
	})

	return items, malformed
}
