package collect

import (
	"testing"

	"watchmarket/models"
)

const marketplaceAHTML = `
<html><body>
<div class="results">
  <div class="listing-card" data-listing-id="a-1001" data-reference="126610LN">
    <a class="listing-title" href="/listings/a-1001">Rolex Submariner Date 126610LN 2023</a>
    <span class="listing-price">$14,500</span>
    <img class="listing-photo" src="https://cdn.example.com/a-1001.jpg">
  </div>
  <div class="listing-card" data-listing-id="a-1002">
    <a class="listing-title" href="/listings/a-1002">Omega Speedmaster 310.30.42.50.01.001</a>
    <span class="listing-price">6.900 EUR</span>
  </div>
  <div class="listing-card" data-listing-id="">
    <a class="listing-title" href="/listings/broken">Card without an id</a>
  </div>
</div>
</body></html>`

func TestParseMarketplaceACards(t *testing.T) {
	items, malformed := parseMarketplaceACards(marketplaceAHTML)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if malformed != 1 {
		t.Errorf("expected 1 malformed card, got %d", malformed)
	}

	first := items[0]
	if first.Source != models.SourceMarketplaceA {
		t.Errorf("wrong source %q", first.Source)
	}
	if first.ExternalID != "a-1001" {
		t.Errorf("wrong external id %q", first.ExternalID)
	}
	if first.ReferenceNumber != "126610LN" {
		t.Errorf("wrong reference %q", first.ReferenceNumber)
	}
	if first.Price != 14500 {
		t.Errorf("wrong price %v", first.Price)
	}
	if first.ListingURL != "/listings/a-1001" {
		t.Errorf("wrong url %q", first.ListingURL)
	}

	// Second card has no data-reference; normalization recovers it from the
	// title later.
	if items[1].ReferenceNumber != "" {
		t.Errorf("expected empty reference, got %q", items[1].ReferenceNumber)
	}
	if items[1].Price != 6900 {
		t.Errorf("wrong price %v", items[1].Price)
	}
}

const marketplaceBHTML = `
<html><body>
<section class="offers">
  <article class="offer-item" data-offer-id="B-88">
    <h3 class="offer-name">Tudor Black Bay 58 M79030N-0001</h3>
    <span class="price-whole">3,250</span><span class="price-fraction">00</span>
    <a class="offer-link" href="https://b.example.com/offers/88"></a>
    <img data-src="https://b.example.com/img/88.webp">
  </article>
  <article class="offer-item" data-offer-id="B-89">
    <h3 class="offer-name"></h3>
  </article>
</section>
</body></html>`

func TestParseMarketplaceBCards(t *testing.T) {
	items, malformed := parseMarketplaceBCards(marketplaceBHTML)

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if malformed != 1 {
		t.Errorf("expected 1 malformed card, got %d", malformed)
	}

	got := items[0]
	if got.ExternalID != "B-88" {
		t.Errorf("wrong external id %q", got.ExternalID)
	}
	if got.RawPrice != "3,250.00" {
		t.Errorf("wrong raw price %q", got.RawPrice)
	}
	if got.ReferenceNumber != "" {
		t.Errorf("marketplace B exposes no structured reference, got %q", got.ReferenceNumber)
	}
	if got.ImageURL != "https://b.example.com/img/88.webp" {
		t.Errorf("wrong image url %q", got.ImageURL)
	}
}

const marketplaceCHTML = `
<html><body>
<ul class="watch-grid">
  <li class="watch-tile" id="tile-c-501">
    <a href="/watch/c-501"><div class="tile-title">Grand Seiko SBGA413 Spring Drive</div></a>
    <span class="currency">CHF</span><span class="amount">5'800</span>
    <span class="condition-badge">Very good</span>
    <img class="tile-image" src="/img/c-501.jpg">
  </li>
  <li class="watch-tile" id="tile-c-502">
    <a href="/watch/c-502"><div class="tile-title">Cartier Santos WSSA0018</div></a>
    <span class="currency">EUR</span><span class="amount">6.450</span>
  </li>
</ul>
</body></html>`

func TestParseMarketplaceCCards(t *testing.T) {
	items, malformed := parseMarketplaceCCards(marketplaceCHTML)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if malformed != 0 {
		t.Errorf("expected no malformed cards, got %d", malformed)
	}

	got := items[0]
	if got.ExternalID != "c-501" {
		t.Errorf("expected tile- prefix stripped, got %q", got.ExternalID)
	}
	if got.Price != 5800 {
		t.Errorf("wrong price %v", got.Price)
	}
	if got.Condition != "Very good" {
		t.Errorf("wrong condition %q", got.Condition)
	}
	if got.RawPrice != "CHF 5'800" {
		t.Errorf("wrong raw price %q", got.RawPrice)
	}

	// Missing condition badge is tolerated.
	if items[1].Condition != "" {
		t.Errorf("expected empty condition, got %q", items[1].Condition)
	}
	if items[1].Price != 6450 {
		t.Errorf("wrong price %v", items[1].Price)
	}
}
