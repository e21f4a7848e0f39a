package collect

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"watchmarket/extract"
	"watchmarket/models"
)

// Marketplace A renders listing cards as div.listing-card with the listing id
// and reference number carried as data attributes. Price sits in a dedicated
// span; the title is a link that also holds the listing URL.
func parseMarketplaceACards(html string) ([]models.RawListing, int) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0
	}

	var items []models.RawListing
	var malformed int

	doc.Find("div.listing-card").Each(func(_ int, card *goquery.Selection) {
		id := strings.TrimSpace(card.AttrOr("data-listing-id", ""))
		link := card.Find("a.listing-title").First()
		title := strings.TrimSpace(link.Text())
		if id == "" || title == "" {
			malformed++
			return
		}

		item := models.RawListing{
			Source:          models.SourceMarketplaceA,
			ExternalID:      id,
			Title:           title,
			ReferenceNumber: strings.TrimSpace(card.AttrOr("data-reference", "")),
			RawPrice:        strings.TrimSpace(card.Find("span.listing-price").First().Text()),
			ListingURL:      link.AttrOr("href", ""),
			ImageURL:        card.Find("img.listing-photo").First().AttrOr("src", ""),
		}
		item.Price = extract.ParsePrice(item.RawPrice)
		items = append(items, item)
	})

	return items, malformed
}
