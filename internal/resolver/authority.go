package resolver

import (
	"context"
	"log/slog"

	"github.com/jroosing/wireweb/internal/protocol"
)

// AuthorityResolver walks a host label-by-label across a chain of
// cooperating authorities. Each hop opens a fresh connection;
// PERMANENT_REDIRECT retries the same label at a new authority, FOUND
// advances to the next label at a new authority, and a visited-route set
// (keyed by the FOUND endpoint) catches loops on the last label.
type AuthorityResolver struct {
	Dial    Dialer
	Version protocol.Version
	Logger  *slog.Logger
}

// NewAuthorityResolver builds a resolver with the given dialer and
// protocol version, logging to slog.Default() if logger is nil.
func NewAuthorityResolver(dial Dialer, version protocol.Version, logger *slog.Logger) *AuthorityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthorityResolver{Dial: dial, Version: version, Logger: logger}
}

// Resolve performs the hop-by-hop walk, starting at
// startAddr for the whole of host.
func (a *AuthorityResolver) Resolve(ctx context.Context, host, startAddr string) (Result, error) {
	remaining := host
	addr := startAddr
	accumulatedSuffix := ""
	visited := make(map[string]struct{})

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		prefix, label, isLast := splitLastLabel(remaining)
		req := protocol.AuthorityResolveRequest{Version: a.Version, IsLast: isLast, Label: label}

		raw, err := roundTrip(ctx, a.Dial, addr, req.Marshal())
		if err != nil {
			a.Logger.Warn("authority resolver: peer unreachable", "addr", addr, "label", label, "error", err)
			return Result{Status: protocol.StatusHostUnreachable}, nil
		}

		resp, err := protocol.ParseResolveResponse(raw)
		if err != nil {
			a.Logger.Warn("authority resolver: malformed response", "addr", addr, "error", err)
			return Result{Status: protocol.StatusBadResponse}, nil
		}

		switch resp.Status {
		case protocol.StatusSuccess:
			if !isLast {
				a.Logger.Warn("authority resolved to destination early", "fqdn", resp.Endpoint, "remaining", remaining)
			}
			return Result{Endpoint: resp.Endpoint, Status: protocol.StatusSuccess}, nil

		case protocol.StatusNonAuthoritative:
			a.Logger.Warn("authority fallback applied", "fqdn", resp.Endpoint)
			return Result{Endpoint: resp.Endpoint, Status: protocol.StatusNonAuthoritative}, nil

		case protocol.StatusGone:
			if !isLast {
				a.Logger.Warn("authority chain ended early", "fqdn", resp.Endpoint)
			}
			return Result{Endpoint: resp.Endpoint, Status: protocol.StatusGone}, nil

		case protocol.StatusPermanentRedirect:
			a.Logger.Warn("authority has moved", "from", addr, "to", resp.Endpoint)
			addr = resp.Endpoint
			// remaining and accumulatedSuffix are untouched: the same
			// label is retried against the new authority.
			continue

		case protocol.StatusFound:
			if isLast {
				if _, seen := visited[resp.Endpoint]; seen {
					a.Logger.Error("authority redirection looped", "endpoint", resp.Endpoint)
					return Result{Status: protocol.StatusLoopDetected}, nil
				}
			}
			visited[resp.Endpoint] = struct{}{}
			accumulatedSuffix = "." + label + accumulatedSuffix

			if !isLast {
				remaining = prefix
			}
			// else: remaining stays as-is (the server returned FOUND on
			// the last label, which violates convention but is tolerated).
			addr = resp.Endpoint
			continue

		case protocol.StatusMisdirected:
			a.Logger.Error("authority could not resolve", "suffix", accumulatedSuffix)
			return Result{Status: protocol.StatusHostUnreachable}, nil

		default:
			a.Logger.Error("authority failure", "status", resp.Status, "host", host, "addr", addr)
			return Result{Status: protocol.StatusHostUnreachable}, nil
		}
	}
}
