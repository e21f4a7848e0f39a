package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"watchmarket/comparison"
	"watchmarket/config"
	"watchmarket/models"
)

// RegisterMarketRoutes registers the comparison and reference views.
func RegisterMarketRoutes(r *gin.Engine, svc *comparison.Service, cfg *config.Config) {
	h := &marketHandler{svc: svc, defaultPageSize: cfg.Compare.DefaultPageSize}
	r.GET("/api/market/comparison", h.handleComparison)
	r.GET("/api/market/references", h.handleReferences)
}

type marketHandler struct {
	svc             *comparison.Service
	defaultPageSize int
}

// handleComparison returns one page of market comparisons for the calling
// dealer's inventory. Dealer identity arrives as the X-Dealer-ID header;
// authentication happens upstream.
func (h *marketHandler) handleComparison(c *gin.Context) {
	dealerID, err := uuid.Parse(c.GetHeader("X-Dealer-ID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid X-Dealer-ID header"})
		return
	}

	filters := models.InventoryFilters{
		Brand:     c.Query("brand"),
		Reference: c.Query("reference"),
		Search:    c.Query("search"),
	}
	if v := c.Query("price_min"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.PriceMin = &f
		}
	}
	if v := c.Query("price_max"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.PriceMax = &f
		}
	}

	page, pageSize := h.pageParams(c)
	result, err := h.svc.Compare(c.Request.Context(), dealerID, filters, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleReferences returns market statistics grouped by reference number.
func (h *marketHandler) handleReferences(c *gin.Context) {
	page, pageSize := h.pageParams(c)
	result, err := h.svc.GroupByReference(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *marketHandler) pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = h.defaultPageSize
	}
	return page, pageSize
}
