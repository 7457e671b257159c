package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/wireweb/internal/adminapi/models"
	cachestore "github.com/jroosing/wireweb/internal/store/cache"
)

func toCacheModel(e cachestore.Entry) models.CacheEntry {
	m := models.CacheEntry{Name: e.Name}
	if e.DomainIP.Valid {
		m.DomainIP = e.DomainIP.String
		m.DomainPort = e.DomainPort.Int64
	}
	return m
}

func fromCacheModel(m models.CacheEntry) cachestore.Entry {
	e := cachestore.Entry{Name: m.Name}
	if m.DomainIP != "" {
		e.DomainIP = sql.NullString{String: m.DomainIP, Valid: true}
		e.DomainPort = sql.NullInt64{Int64: m.DomainPort, Valid: true}
	}
	return e
}

// ListCacheEntries godoc
// @Summary List cache entries
// @Description Lists every row of the cache server's dns_cache table
// @Tags cache
// @Produce json
// @Success 200 {object} models.CacheEntryList
// @Security ApiKeyAuth
// @Router /cache/entries [get]
func (h *Handler) ListCacheEntries(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "cache store not configured"})
		return
	}
	entries, err := h.Cache.ListEntries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]models.CacheEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toCacheModel(e))
	}
	c.JSON(http.StatusOK, models.CacheEntryList{Entries: out, Count: len(out)})
}

// GetCacheEntry godoc
// @Summary Get a cache entry
// @Tags cache
// @Produce json
// @Param name path string true "Entry name"
// @Success 200 {object} models.CacheEntry
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /cache/entries/{name} [get]
func (h *Handler) GetCacheEntry(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "cache store not configured"})
		return
	}
	entry, ok, err := h.Cache.GetEntry(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "entry not found"})
		return
	}
	c.JSON(http.StatusOK, toCacheModel(entry))
}

// PutCacheEntry godoc
// @Summary Create or replace a cache entry
// @Tags cache
// @Accept json
// @Produce json
// @Param entry body models.CacheEntry true "Entry"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /cache/entries [put]
func (h *Handler) PutCacheEntry(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "cache store not configured"})
		return
	}
	var m models.CacheEntry
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.Cache.UpsertEntry(fromCacheModel(m)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// DeleteCacheEntry godoc
// @Summary Evict a cache entry
// @Description Manually evicts a name from the cache server's dns_cache
// table. No wire request does this; a client's validation-on-hit only
// deletes from the client's own ephemeral store.
// @Tags cache
// @Produce json
// @Param name path string true "Entry name"
// @Success 200 {object} models.StatusResponse
// @Security ApiKeyAuth
// @Router /cache/entries/{name} [delete]
func (h *Handler) DeleteCacheEntry(c *gin.Context) {
	if h.Cache == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "cache store not configured"})
		return
	}
	if err := h.Cache.DeleteEntry(c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}
