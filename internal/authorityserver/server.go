// Package authorityserver implements the authority server: it answers
// authority-resolve requests out of a dns_records backing store
// (internal/store/authority).
package authorityserver

import (
	"context"
	"log/slog"

	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/store/authority"
	"github.com/jroosing/wireweb/internal/wireserver"
)

// Handler implements wireserver.Handler against a dns_records store.
type Handler struct {
	Store   *authority.Store
	Version protocol.Version
	Logger  *slog.Logger
}

// NewHandler builds a Handler, defaulting to slog.Default() if logger is nil.
func NewHandler(store *authority.Store, version protocol.Version, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Store: store, Version: version, Logger: logger}
}

var _ wireserver.Handler = (*Handler)(nil)

// Handle serves one connection's authority-resolve request.
func (h *Handler) Handle(ctx context.Context, remoteIP string, req []byte) []byte {
	if len(req) < protocol.MinAuthorityResolveLen {
		return protocol.BuildStatusOnly(protocol.StatusTooSmall)
	}

	parsed, err := protocol.ParseAuthorityResolveRequest(req)
	if err != nil {
		return protocol.BuildStatusOnly(protocol.StatusBadRequest)
	}

	if versionStatus, mismatched := compatibilityStatus(h.Version, parsed.Version); mismatched {
		h.Logger.WarnContext(ctx, "authority version mismatch", "ip", remoteIP, "client", parsed.Version, "server", h.Version)
		// The connection is not dropped: the client still gets a reply it
		// can act on, it's just the version error rather than a resolution.
		return protocol.BuildStatusOnly(versionStatus)
	}

	return h.resolve(ctx, parsed)
}

// compatibilityStatus reports whether client and server are compatible,
// and if not, which of UPGRADE_REQUIRED/DOWNGRADE_REQUIRED applies.
func compatibilityStatus(server, client protocol.Version) (status protocol.Status, mismatched bool) {
	switch protocol.Compare(client, server) {
	case protocol.Equal:
		return 0, false
	case protocol.Less:
		return protocol.StatusUpgradeRequired, true
	default:
		return protocol.StatusDowngradeRequired, true
	}
}

func (h *Handler) resolve(ctx context.Context, req protocol.AuthorityResolveRequest) []byte {
	// Wildcard self-relocation takes priority over any label lookup.
	if wc, ok, err := h.Store.GetWildcard(); err == nil && ok && wc.HasDNS() {
		return protocol.BuildEndpointResponse(protocol.StatusPermanentRedirect, wc.DNSEndpoint())
	}

	rec, ok, err := h.Store.GetRecord(req.Label)
	if err != nil {
		h.Logger.ErrorContext(ctx, "authority store lookup failed", "label", req.Label, "error", err)
		return protocol.BuildStatusOnly(protocol.StatusMisdirected)
	}
	if !ok {
		return h.wildcardFallback()
	}

	switch {
	case req.IsLast && rec.HasDomain():
		return protocol.BuildEndpointResponse(protocol.StatusSuccess, rec.DomainEndpoint())

	case req.IsLast:
		// The chain ends here but the row has no domain endpoint; a
		// delegation-only row cannot satisfy a terminal label either.
		return protocol.BuildStatusOnly(protocol.StatusGone)

	case !req.IsLast && rec.HasDNS():
		return protocol.BuildEndpointResponse(protocol.StatusFound, rec.DNSEndpoint())

	case !req.IsLast && rec.HasDomain():
		return protocol.BuildEndpointResponse(protocol.StatusSuccess, rec.DomainEndpoint())

	default:
		return h.wildcardFallback()
	}
}

func (h *Handler) wildcardFallback() []byte {
	wc, ok, err := h.Store.GetWildcard()
	if err == nil && ok && wc.HasDomain() {
		return protocol.BuildEndpointResponse(protocol.StatusNonAuthoritative, wc.DomainEndpoint())
	}
	return protocol.BuildStatusOnly(protocol.StatusMisdirected)
}
