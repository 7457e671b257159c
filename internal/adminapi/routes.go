package adminapi

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jroosing/wireweb/internal/adminapi/handlers"
	"github.com/jroosing/wireweb/internal/adminapi/middleware"
	"github.com/jroosing/wireweb/internal/config"
)

// RegisterRoutes mounts the swagger UI and every /api/v1 endpoint. Routes
// that depend on a store the running binary didn't wire in (h.Authority,
// h.Cache, h.Client may each be nil) respond 501 rather than panicking.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg *config.Config) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	if cfg != nil && cfg.API.APIKey != "" {
		api.Use(middleware.RequireAPIKey(cfg.API.APIKey))
	}

	api.GET("/health", h.Health)
	api.GET("/stats", h.Stats)

	api.GET("/authority/records", h.ListAuthorityRecords)
	api.PUT("/authority/records", h.PutAuthorityRecord)
	api.GET("/authority/records/:name", h.GetAuthorityRecord)
	api.DELETE("/authority/records/:name", h.DeleteAuthorityRecord)

	api.GET("/cache/entries", h.ListCacheEntries)
	api.PUT("/cache/entries", h.PutCacheEntry)
	api.GET("/cache/entries/:name", h.GetCacheEntry)
	api.DELETE("/cache/entries/:name", h.DeleteCacheEntry)

	api.GET("/client/stacks", h.ListStacks)
	api.PUT("/client/stacks", h.PutStack)
	api.GET("/client/stacks/:tag", h.GetStack)
	api.DELETE("/client/ephemeral/:url", h.DeleteEphemeralEntry)
}
