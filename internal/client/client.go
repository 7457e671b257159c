// Package client implements the client-side local ephemeral cache: a
// suffix-shortening lookup over the url->endpoint table in
// internal/store/client, backed by a fresh authoritative resolution for
// validation-on-hit.
package client

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"

	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/resolver"
	"github.com/jroosing/wireweb/internal/store/client"
)

// SplitAddress strips an optional "web://" scheme from address and splits
// it on the first '/' into (fqdn, path).
func SplitAddress(address string) (fqdn, path string) {
	addr := strings.TrimPrefix(address, "web://")
	fqdn, path, found := strings.Cut(addr, "/")
	if !found {
		return addr, ""
	}
	return fqdn, path
}

// SplitHostPort splits fqdn on its last ':' into (host, port). The
// address grammar puts any client-supplied port after the last colon of
// the host part, so a colon-free fqdn yields an empty port.
func SplitHostPort(fqdn string) (host, port string) {
	if i := strings.LastIndexByte(fqdn, ':'); i >= 0 {
		return fqdn[:i], fqdn[i+1:]
	}
	return fqdn, ""
}

// SplicePort replaces the port component of endpoint with port, if port
// is non-empty: a client-supplied port overrides whatever port the
// resolution chain answered with.
func SplicePort(endpoint, port string) string {
	if port == "" {
		return endpoint
	}
	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		host = endpoint
	}
	return net.JoinHostPort(host, port)
}

// Cache is the client-side local ephemeral cache, consulted by the
// resolution coordinator's cache path. On a full local miss it tries the
// remote cache server as a cheaper alternative to a full authority walk
// before falling back to the authority resolver, so the local store and
// the remote cache lookup form a single "cache path".
type Cache struct {
	Store          *client.Store
	Resolver       *resolver.AuthorityResolver
	RemoteResolver *resolver.CacheResolver
	Logger         *slog.Logger

	invalidations atomic.Int64
}

// Invalidations reports how many stale rows validation-on-hit has deleted
// since this Cache was built.
func (c *Cache) Invalidations() int64 {
	return c.invalidations.Load()
}

// New builds a Cache over store, using authority for authoritative
// validation and left-portion continuation, and (optionally) remote for
// the remote cache-server round trip on a full local miss.
func New(store *client.Store, authority *resolver.AuthorityResolver, remote *resolver.CacheResolver, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{Store: store, Resolver: authority, RemoteResolver: remote, Logger: logger}
}

// Resolve looks host up by progressively shorter suffix (with an optional
// client-supplied port, the starting authority address used for
// authoritative resolution/validation, and the remote cache server
// address used on a full local miss). dnsAddr is also the starting
// point for the left-portion continuation and validation-on-hit
// re-resolution.
func (c *Cache) Resolve(ctx context.Context, host, port, dnsAddr, cacherAddr string) (resolver.Result, error) {
	res, err := c.resolve(ctx, host, dnsAddr, cacherAddr)
	if err == nil && res.Endpoint != "" {
		res.Endpoint = SplicePort(res.Endpoint, port)
	}
	return res, err
}

func (c *Cache) resolve(ctx context.Context, host, dnsAddr, cacherAddr string) (resolver.Result, error) {
	blocks := strings.Split(host, ".")
	lookahead := ""

	for len(blocks) > 0 {
		suffix := strings.Join(blocks, ".")
		endpoint, ok, err := c.Store.GetEndpoint(suffix)
		if err != nil {
			return resolver.Result{}, err
		}
		if ok {
			return c.resolveHit(ctx, host, suffix, endpoint, lookahead, dnsAddr)
		}
		if lookahead == "" {
			lookahead = blocks[0]
		} else {
			lookahead = lookahead + "." + blocks[0]
		}
		blocks = blocks[1:]
	}

	if c.RemoteResolver != nil && cacherAddr != "" {
		remote, err := c.RemoteResolver.Resolve(ctx, cacherAddr, host)
		if err != nil {
			return resolver.Result{}, err
		}
		if remote.Status == protocol.StatusSuccess && remote.Endpoint != "" {
			if err := c.Store.PutEndpoint(host, remote.Endpoint); err != nil {
				c.Logger.Warn("local cache: failed to record new entry", "host", host, "error", err)
			}
			return remote, nil
		}
	}

	res, err := c.Resolver.Resolve(ctx, host, dnsAddr)
	if err != nil {
		return resolver.Result{}, err
	}
	if res.Status == protocol.StatusSuccess && res.Endpoint != "" {
		if err := c.Store.PutEndpoint(host, res.Endpoint); err != nil {
			c.Logger.Warn("local cache: failed to record new entry", "host", host, "error", err)
		}
	}
	return res, nil
}

// resolveHit completes the hit side of the lookup once a stored suffix is
// found: optionally walk the remaining lookahead at the cached authority,
// then validate against a fresh authoritative resolution of the full
// host. Any client-supplied port is spliced in by Resolve after the
// comparison, so cached and authoritative endpoints compare raw.
func (c *Cache) resolveHit(ctx context.Context, fullHost, suffix, endpoint, lookahead, dnsAddr string) (resolver.Result, error) {
	candidate := resolver.Result{Endpoint: endpoint, Status: protocol.StatusSuccess}

	if lookahead != "" {
		res, err := c.Resolver.Resolve(ctx, lookahead, endpoint)
		if err != nil {
			return resolver.Result{}, err
		}
		candidate = res
	}

	authoritative, err := c.Resolver.Resolve(ctx, fullHost, dnsAddr)
	if err != nil {
		return resolver.Result{}, err
	}

	if authoritative.Status != protocol.StatusSuccess || authoritative.Endpoint == "" {
		// Authoritative resolution failed; the cache answer still
		// stands, labelled with the authoritative status code.
		c.Logger.Warn("local cache: validation resolution failed, keeping cached answer",
			"host", fullHost, "status", authoritative.Status)
		candidate.Status = authoritative.Status
		return candidate, nil
	}

	if authoritative.Endpoint != candidate.Endpoint {
		c.invalidations.Add(1)
		c.Logger.Warn("local cache: validation mismatch, invalidating",
			"host", fullHost, "suffix", suffix, "cached", candidate.Endpoint, "authoritative", authoritative.Endpoint)
		if err := c.Store.DeleteEndpoint(suffix); err != nil {
			c.Logger.Warn("local cache: failed to invalidate stale entry", "suffix", suffix, "error", err)
		}
		if err := c.Store.PutEndpoint(fullHost, authoritative.Endpoint); err != nil {
			c.Logger.Warn("local cache: failed to record new entry", "host", fullHost, "error", err)
		}
		authoritative.Status = protocol.StatusSuccess
		return authoritative, nil
	}

	return candidate, nil
}
