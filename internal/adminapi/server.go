// Package adminapi provides the REST management API for wireweb.
// It exposes endpoints for health checks, statistics, and CRUD access to
// the authority, cache, and client backing stores via a Gin-based HTTP
// server.
package adminapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/wireweb/internal/adminapi/handlers"
	"github.com/jroosing/wireweb/internal/adminapi/middleware"
	"github.com/jroosing/wireweb/internal/config"
	authoritystore "github.com/jroosing/wireweb/internal/store/authority"
	cachestore "github.com/jroosing/wireweb/internal/store/cache"
	clientstore "github.com/jroosing/wireweb/internal/store/client"
)

// Server is the admin management REST API server. Not part of the wire
// protocol itself: a separate HTTP surface for operating a deployment.
//
// Security note: do not expose this API to untrusted networks without
// setting cfg.API.APIKey.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
	handler    *handlers.Handler
}

// New constructs a Server. Any of authority, cache, or client may be nil
// if the calling binary doesn't own that store.
func New(cfg *config.Config, logger *slog.Logger, authority *authoritystore.Store, cache *cachestore.Store, client *clientstore.Store) *Server {
	if cfg == nil {
		panic("adminapi.New: cfg is nil")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := handlers.New(cfg, logger)
	h.Authority = authority
	h.Cache = cache
	h.Client = client
	RegisterRoutes(engine, h, cfg)

	addr := net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{cfg: cfg, logger: logger, engine: engine, httpServer: httpServer, handler: h}
}

// SetStatsFunc wires a live resolve-stats source into the /stats endpoint.
func (s *Server) SetStatsFunc(fn handlers.StatsFunc) {
	s.handler.SetStatsFunc(fn)
}

func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
