package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"watchmarket/models"
)

// Marketplace B wraps each offer in an article.offer-item keyed by
// data-offer-id. It exposes no structured reference number; the reference is
// embedded in the title text and recovered during normalization. Prices come
// pre-split into integer and decimal spans.
func parseMarketplaceBCards(html string) ([]models.RawListing, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0
	}

	var items []models.RawListing
	var malformed int

	doc.Find("article.offer-item").Each(func(_ int, card *goquery.Selection) {
		id := strings.TrimSpace(card.AttrOr("data-offer-id", ""))
		title := strings.TrimSpace(card.Find("h3.offer-name").First().Text())
		if id == "" || title == "" {
			malformed++
			return
		}

		price := strings.TrimSpace(card.Find("span.price-whole").First().Text())
		if frac := strings.TrimSpace(card.Find("span.price-fraction").First().Text()); frac != "" {
			price += "." + frac
		}

		items = append(items, models.RawListing{
			Source:     models.SourceMarketplaceB,
			ExternalID: id,
			Title:      title,
			RawPrice:   price,
			ListingURL: card.Find("a.offer-link").First().AttrOr("href", ""),
			ImageURL:   card.Find("img").First().AttrOr("data-src", ""),
		})
	})

	return items, malformed
}
