package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchmarket/comparison"
	"watchmarket/config"
	"watchmarket/models"
)

type stubMatcher struct{}

func (stubMatcher) Match(ctx context.Context, item models.InventoryItem) ([]models.NormalizedListing, error) {
	if item.ReferenceNumber == nil {
		return nil, nil
	}
	return []models.NormalizedListing{
		{Source: models.SourceMarketplaceA, Price: 9400, ScrapedAt: time.Now()},
	}, nil
}

type stubInventory struct {
	items []models.InventoryItem
}

func (s stubInventory) ListInventory(ctx context.Context, dealerID uuid.UUID, f models.InventoryFilters, limit, offset int) ([]models.InventoryItem, int, error) {
	return s.items, len(s.items), nil
}

type stubReferences struct{}

func (stubReferences) DistinctReferences(ctx context.Context, limit, offset int) ([]string, int, error) {
	return []string{"116610ln"}, 1, nil
}

func (stubReferences) ListingsByReference(ctx context.Context, ref string) ([]models.NormalizedListing, error) {
	return []models.NormalizedListing{
		{Source: models.SourceMarketplaceA, Brand: "Rolex", Price: 14500, ScrapedAt: time.Now()},
	}, nil
}

func newTestRouter(items []models.InventoryItem) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := comparison.NewService(stubMatcher{}, stubInventory{items: items}, stubReferences{}, 0.05)
	cfg := &config.Config{}
	cfg.Compare.DefaultPageSize = 20
	return NewRouter(svc, nil, cfg)
}

func TestComparisonRequiresDealerHeader(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market/comparison", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestComparisonEnvelope(t *testing.T) {
	ref := "116610LN"
	r := newTestRouter([]models.InventoryItem{{
		ID:              uuid.New(),
		ReferenceNumber: &ref,
		ModelName:       "Submariner Date",
		Brand:           "Rolex",
		BuyingPrice:     8500,
	}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market/comparison", nil)
	req.Header.Set("X-Dealer-ID", uuid.NewString())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count       int               `json:"count"`
		TotalPages  int               `json:"total_pages"`
		CurrentPage int               `json:"current_page"`
		Results     []json.RawMessage `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, 1, body.TotalPages)
	assert.Equal(t, 1, body.CurrentPage)
	require.Len(t, body.Results, 1)
}

func TestReferencesEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/market/references", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body models.PaginatedReferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "116610ln", body.Results[0].ReferenceNumber)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
