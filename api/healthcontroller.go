package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"watchmarket/store"
)

// RegisterHealthRoutes registers the health endpoint. When a run store is
// available the response includes the latest collection runs.
func RegisterHealthRoutes(r *gin.Engine, runs *store.RunStore) {
	r.GET("/health", func(c *gin.Context) {
		resp := gin.H{"status": "healthy"}
		if runs != nil {
			if recent, err := runs.RecentRuns(c.Request.Context(), 5); err == nil {
				resp["recent_runs"] = recent
			}
		}
		c.JSON(http.StatusOK, resp)
	})
}
