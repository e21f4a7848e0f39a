package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"watchmarket/config"
	"watchmarket/models"
)

const apiPageSize = 50

// APICollector pulls listings from the OAuth2-protected market API. Tokens
// are fetched with the client-credentials grant and refreshed transparently
// by the oauth2 transport.
type APICollector struct {
	cfg   *config.SourceConfig
	creds clientcredentials.Config
	base  *http.Client
}

func NewAPICollector(src *config.SourceConfig, api config.MarketAPIConfig, base *http.Client) *APICollector {
	return &APICollector{
		cfg: src,
		creds: clientcredentials.Config{
			TokenURL:     api.TokenURL,
			ClientID:     api.ClientID,
			ClientSecret: api.ClientSecret,
		},
		base: base,
	}
}

func (c *APICollector) ID() string {
	return c.cfg.ID
}

type apiListing struct {
	ID        json.Number `json:"id"`
	Title     string      `json:"title"`
	Price     float64     `json:"price"`
	Condition string      `json:"condition"`
	ImageURL  string      `json:"image_url"`
	URL       string      `json:"url"`
}

type apiPage struct {
	Results []apiListing `json:"results"`
	Paging  struct {
		TotalPages int `json:"total_pages"`
	} `json:"paging"`
}

// Collect walks the search endpoint page by page. A failure before the first
// page (token exchange included) fails the run; a failure after that returns
// what was gathered so far with a nil error, so the pipeline keeps partial
// batches. Results without an id or title are skipped and counted.
func (c *APICollector) Collect(ctx context.Context, maxItems int) ([]models.RawListing, int, error) {
	if maxItems <= 0 || maxItems > c.cfg.MaxItems {
		maxItems = c.cfg.MaxItems
	}

	// Token requests go through the proxy-free API client, not the default
	// http.Client the oauth2 package would otherwise use.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, c.base)
	client := c.creds.Client(tokenCtx)

	searchURL := c.cfg.Endpoints["search"]
	if searchURL == "" {
		searchURL = c.cfg.URL
	}

	var items []models.RawListing
	var malformed int
	totalPages := 1

	for page := 1; page <= totalPages; page++ {
		result, err := c.fetchPage(ctx, client, searchURL, page)
		if err != nil {
			if page == 1 {
				return nil, malformed, fmt.Errorf("api source first page: %w", err)
			}
			log.Printf("%s: page %d failed, keeping %d listings: %v", c.cfg.ID, page, len(items), err)
			return items, malformed, nil
		}
		if result.Paging.TotalPages > totalPages {
			totalPages = result.Paging.TotalPages
		}

		for _, l := range result.Results {
			if l.ID.String() == "" || l.Title == "" {
				malformed++
				continue
			}
			items = append(items, models.RawListing{
				Source:     models.SourceAPI,
				ExternalID: l.ID.String(),
				Title:      l.Title,
				Price:      l.Price,
				Condition:  l.Condition,
				ImageURL:   l.ImageURL,
				ListingURL: l.URL,
			})
			if len(items) >= maxItems {
				return items, malformed, nil
			}
		}
	}

	return items, malformed, nil
}

func (c *APICollector) fetchPage(ctx context.Context, client *http.Client, searchURL string, page int) (*apiPage, error) {
	u, err := url.Parse(searchURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(apiPageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result apiPage
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
