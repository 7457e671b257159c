// Package coordinator implements the client's public resolution contract:
// races the cache path and the authority path, adopts whichever returns a
// usable endpoint first, and drives the content-fetch continuation.
//
// The race is a goroutine per path, a buffered channel per path, and a
// select over both plus ctx.Done. Neither side is cancelled on loss.
package coordinator

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/jroosing/wireweb/internal/client"
	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/resolver"
	"github.com/jroosing/wireweb/internal/wire"
)

// Coordinator exposes the resolve(address, integrity_check?, dns_ip?,
// cacher_ip?) contract.
type Coordinator struct {
	Authority *resolver.AuthorityResolver
	Cache     *client.Cache
	Dial      resolver.Dialer
	Version   protocol.Version
	Logger    *slog.Logger

	total          atomic.Int64
	cacheWins      atomic.Int64
	authorityWins  atomic.Int64
	failures       atomic.Int64
	integrityFails atomic.Int64
}

// Stats is a snapshot of resolve outcomes since the Coordinator was built,
// reported through the admin API's /stats endpoint.
type Stats struct {
	Total          int64
	CacheWins      int64
	AuthorityWins  int64
	Failures       int64
	IntegrityFails int64
}

// Stats returns a point-in-time snapshot of the resolve counters.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Total:          c.total.Load(),
		CacheWins:      c.cacheWins.Load(),
		AuthorityWins:  c.authorityWins.Load(),
		Failures:       c.failures.Load(),
		IntegrityFails: c.integrityFails.Load(),
	}
}

// New builds a Coordinator from its two racing resolution paths.
func New(authority *resolver.AuthorityResolver, cache *client.Cache, dial resolver.Dialer, version protocol.Version, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{Authority: authority, Cache: cache, Dial: dial, Version: version, Logger: logger}
}

// pathResult is what each racing path delivers on its channel.
type pathResult struct {
	res resolver.Result
	err error
}

// Resolve races authority_path(dnsAddr, address) against
// cache_path(cacherAddr, address), adopting the first to produce a usable
// endpoint and falling back to the other on failure. If integrityCheck is
// true and the winner produced an endpoint, the loser is awaited and any
// endpoint mismatch is logged at error level; no corrective action is
// taken.
func (c *Coordinator) Resolve(ctx context.Context, address string, integrityCheck bool, dnsAddr, cacherAddr string) (resolver.Result, error) {
	c.total.Add(1)
	fqdn, _ := client.SplitAddress(address)
	host, port := client.SplitHostPort(fqdn)

	authorityCh := make(chan pathResult, 1)
	go func() {
		res, err := c.Authority.Resolve(ctx, host, dnsAddr)
		if err == nil && res.Endpoint != "" {
			res.Endpoint = client.SplicePort(res.Endpoint, port)
		}
		authorityCh <- pathResult{res, err}
	}()

	cacheCh := make(chan pathResult, 1)
	go func() {
		res, err := c.Cache.Resolve(ctx, host, port, dnsAddr, cacherAddr)
		cacheCh <- pathResult{res, err}
	}()

	select {
	case <-ctx.Done():
		return resolver.Result{}, ctx.Err()

	case winner := <-cacheCh:
		return c.settle(ctx, fqdn, winner, authorityCh, integrityCheck, "cache")

	case winner := <-authorityCh:
		return c.settle(ctx, fqdn, winner, cacheCh, integrityCheck, "authority")
	}
}

// settle adopts winner if it produced a usable endpoint, otherwise falls
// back to awaiting loserCh. When integrityCheck is set and winner did
// produce an endpoint, loserCh is still awaited afterward for a
// cross-validation log, never to change the returned result.
func (c *Coordinator) settle(ctx context.Context, fqdn string, winner pathResult, loserCh <-chan pathResult, integrityCheck bool, winnerName string) (resolver.Result, error) {
	if winner.err == nil && winner.res.Endpoint != "" {
		c.recordWin(winnerName)
		c.Logger.Info("resolution path won race", "path", winnerName, "host", fqdn, "endpoint", winner.res.Endpoint)
		if integrityCheck {
			go c.crossCheck(fqdn, winner.res.Endpoint, loserCh)
		}
		return winner.res, nil
	}

	c.Logger.Warn("resolution path returned no endpoint, falling back", "path", winnerName, "host", fqdn, "status", winner.res.Status, "error", winner.err)
	select {
	case <-ctx.Done():
		return resolver.Result{}, ctx.Err()
	case loser := <-loserCh:
		if loser.err != nil {
			c.failures.Add(1)
			return resolver.Result{}, loser.err
		}
		if loser.res.Endpoint == "" {
			c.failures.Add(1)
			c.Logger.Warn("resolution unable to resolve host", "host", fqdn)
		} else if winnerName == "cache" {
			c.recordWin("authority")
		} else {
			c.recordWin("cache")
		}
		return loser.res, nil
	}
}

func (c *Coordinator) recordWin(path string) {
	if path == "cache" {
		c.cacheWins.Add(1)
	} else {
		c.authorityWins.Add(1)
	}
}

// crossCheck awaits the losing path and logs a mismatch at error level,
// for the integrity check. It never mutates the already returned
// result; it runs detached from the caller, and the loser always runs
// to completion rather than being cancelled.
func (c *Coordinator) crossCheck(fqdn, winningEndpoint string, loserCh <-chan pathResult) {
	loser := <-loserCh
	if loser.err != nil || loser.res.Endpoint == "" {
		return
	}
	if loser.res.Endpoint != winningEndpoint {
		c.integrityFails.Add(1)
		c.Logger.Error("resolution paths disagree", "host", fqdn, "winner", winningEndpoint, "loser", loser.res.Endpoint)
	}
}

// Fetch is the content-fetch continuation: resolve address to
// an endpoint, then open a fresh TCP session to it and negotiate a
// rendering stack from the client's preference list.
func (c *Coordinator) Fetch(ctx context.Context, address string, stacks []string, integrityCheck bool, dnsAddr, cacherAddr string) (protocol.Response, error) {
	_, path := client.SplitAddress(address)

	resolved, err := c.Resolve(ctx, address, integrityCheck, dnsAddr, cacherAddr)
	if err != nil {
		return protocol.Response{}, err
	}
	if resolved.Endpoint == "" {
		return protocol.Response{Status: resolved.Status}, nil
	}

	req := protocol.ContentFetchRequest{Version: c.Version, Stacks: stacks, Path: path}

	conn, err := c.Dial(ctx, resolved.Endpoint)
	if err != nil {
		c.Logger.Warn("content fetch: peer unreachable", "endpoint", resolved.Endpoint, "error", err)
		return protocol.Response{Status: protocol.StatusHostUnreachable}, nil
	}
	defer conn.Close()

	if err := wire.Send(conn, req.Marshal()); err != nil {
		c.Logger.Warn("content fetch: send failed", "endpoint", resolved.Endpoint, "error", err)
		return protocol.Response{Status: protocol.StatusHostUnreachable}, nil
	}
	raw := wire.Receive(conn)
	if len(raw) == 0 {
		c.Logger.Warn("content fetch: empty response", "endpoint", resolved.Endpoint)
		return protocol.Response{Status: protocol.StatusHostUnreachable}, nil
	}

	resp, err := protocol.ParseContentFetchResponse(raw)
	if err != nil {
		c.Logger.Warn("content fetch: malformed response", "endpoint", resolved.Endpoint, "error", err)
		return protocol.Response{Status: protocol.StatusBadResponse}, nil
	}
	if resp.Status != protocol.StatusSuccess {
		c.Logger.Warn("content fetch: worst status on path", "status", resp.Status)
	}
	return resp, nil
}
