// Package handlers implements the REST API endpoint handlers for the
// wireweb admin API.
//
// @title wireweb Admin API
// @version 1.0
// @description REST API for managing wireweb's authority/cache backing
// stores and client-side stacks table.
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package handlers

import (
	"log/slog"
	"time"

	"github.com/jroosing/wireweb/internal/adminapi/models"
	"github.com/jroosing/wireweb/internal/config"
	authoritystore "github.com/jroosing/wireweb/internal/store/authority"
	cachestore "github.com/jroosing/wireweb/internal/store/cache"
	clientstore "github.com/jroosing/wireweb/internal/store/client"
)

// StatsFunc reports the coordinator's resolve-path counters; nil until
// the caller wires a live coordinator in with SetStatsFunc.
type StatsFunc func() models.ResolveStats

// Handler contains dependencies for admin API handlers. Any of Authority,
// Cache, or Client may be nil if the running binary doesn't own that
// store (e.g. the authority binary wires only Authority).
type Handler struct {
	cfg       *config.Config
	logger    *slog.Logger
	startTime time.Time

	Authority *authoritystore.Store
	Cache     *cachestore.Store
	Client    *clientstore.Store

	statsFunc StatsFunc
}

// New creates a new Handler with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetStatsFunc wires a live resolve-stats source, usually backed by the
// coordinator running in the same process as the client store.
func (h *Handler) SetStatsFunc(fn StatsFunc) {
	h.statsFunc = fn
}
