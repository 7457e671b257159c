package resolver

import (
	"context"
	"log/slog"

	"github.com/jroosing/wireweb/internal/protocol"
)

// CacheResolver performs the single-shot cache-server lookup. Unlike
// the authority resolver it never chains: at most one
// PERMANENT_REDIRECT hop is followed, since cache-server relocation is
// idempotent and does not itself delegate further.
type CacheResolver struct {
	Dial    Dialer
	Version protocol.Version
	Logger  *slog.Logger
}

// NewCacheResolver builds a resolver with the given dialer and protocol
// version, logging to slog.Default() if logger is nil.
func NewCacheResolver(dial Dialer, version protocol.Version, logger *slog.Logger) *CacheResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CacheResolver{Dial: dial, Version: version, Logger: logger}
}

// Resolve sends a cache-resolve request for host to cacherAddr.
func (c *CacheResolver) Resolve(ctx context.Context, cacherAddr, host string) (Result, error) {
	addr := cacherAddr
	redirected := false

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		req := protocol.CacheResolveRequest{Version: c.Version, Host: host}
		raw, err := roundTrip(ctx, c.Dial, addr, req.Marshal())
		if err != nil {
			c.Logger.Warn("cache resolver: peer unreachable", "addr", addr, "host", host, "error", err)
			return Result{Status: protocol.StatusHostUnreachable}, nil
		}

		resp, err := protocol.ParseResolveResponse(raw)
		if err != nil {
			c.Logger.Warn("cache resolver: malformed response", "addr", addr, "error", err)
			return Result{Status: protocol.StatusBadResponse}, nil
		}

		switch resp.Status {
		case protocol.StatusSuccess:
			return Result{Endpoint: resp.Endpoint, Status: protocol.StatusSuccess}, nil

		case protocol.StatusPermanentRedirect:
			if redirected {
				c.Logger.Error("cache relocation did not stabilize", "addr", addr)
				return Result{Status: protocol.StatusHostUnreachable}, nil
			}
			c.Logger.Warn("cache has moved", "from", addr, "to", resp.Endpoint)
			addr = resp.Endpoint
			redirected = true
			continue

		case protocol.StatusMisdirected:
			c.Logger.Error("cache could not resolve", "host", host)
			return Result{Status: protocol.StatusHostUnreachable}, nil

		default:
			c.Logger.Error("cache failure", "status", resp.Status, "host", host)
			return Result{Status: protocol.StatusHostUnreachable}, nil
		}
	}
}
