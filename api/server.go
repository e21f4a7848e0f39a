// Package api exposes the market comparison views over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"watchmarket/comparison"
	"watchmarket/config"
	"watchmarket/store"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc *comparison.Service, runs *store.RunStore, cfg *config.Config) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterHealthRoutes(r, runs)
	RegisterMarketRoutes(r, svc, cfg)
	return r
}
