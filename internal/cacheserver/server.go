// Package cacheserver implements the cache server: it answers
// single-shot host->endpoint lookups out of a dns_cache backing store
// (internal/store/cache).
package cacheserver

import (
	"context"
	"log/slog"

	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/store/cache"
	"github.com/jroosing/wireweb/internal/wireserver"
)

// Handler implements wireserver.Handler against a dns_cache store.
type Handler struct {
	Store   *cache.Store
	Version protocol.Version
	Logger  *slog.Logger
}

// NewHandler builds a Handler, defaulting to slog.Default() if logger is nil.
func NewHandler(store *cache.Store, version protocol.Version, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, Version: version, Logger: logger}
}

var _ wireserver.Handler = (*Handler)(nil)

// Handle serves one connection's cache-resolve request.
func (h *Handler) Handle(ctx context.Context, remoteIP string, req []byte) []byte {
	if len(req) < protocol.MinCacheResolveLen {
		return protocol.BuildStatusOnly(protocol.StatusTooSmall)
	}

	parsed, err := protocol.ParseCacheResolveRequest(req)
	if err != nil {
		return protocol.BuildStatusOnly(protocol.StatusBadRequest)
	}

	switch protocol.Compare(parsed.Version, h.Version) {
	case protocol.Equal:
		// compatible, continue
	case protocol.Less:
		h.Logger.WarnContext(ctx, "cache version mismatch", "ip", remoteIP, "client", parsed.Version, "server", h.Version)
		return protocol.BuildStatusOnly(protocol.StatusUpgradeRequired)
	default:
		h.Logger.WarnContext(ctx, "cache version mismatch", "ip", remoteIP, "client", parsed.Version, "server", h.Version)
		return protocol.BuildStatusOnly(protocol.StatusDowngradeRequired)
	}

	if wc, ok, err := h.Store.GetWildcard(); err == nil && ok && wc.HasDomain() {
		return protocol.BuildEndpointResponse(protocol.StatusPermanentRedirect, wc.Endpoint())
	}

	entry, ok, err := h.Store.GetEntry(parsed.Host)
	if err != nil {
		h.Logger.ErrorContext(ctx, "cache store lookup failed", "host", parsed.Host, "error", err)
		return protocol.BuildStatusOnly(protocol.StatusMisdirected)
	}
	if ok && entry.HasDomain() {
		return protocol.BuildEndpointResponse(protocol.StatusSuccess, entry.Endpoint())
	}
	return protocol.BuildStatusOnly(protocol.StatusMisdirected)
}
