// Package contentserver implements the content server: it negotiates a
// rendering stack with the client and serves a file from a configured
// root directory.
package contentserver

import (
	"context"
	"log/slog"
	"os"

	"github.com/jroosing/wireweb/internal/protocol"
	"github.com/jroosing/wireweb/internal/wireserver"
)

// Handler implements wireserver.Handler, serving files under Root and
// recognizing only the stack tags present in Stacks.
type Handler struct {
	Root    string
	Stacks  map[string]struct{}
	Version protocol.Version
	Logger  *slog.Logger
}

// NewHandler builds a Handler for the given root directory and set of
// recognized stack tags.
func NewHandler(root string, stacks map[string]struct{}, version protocol.Version, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Root: root, Stacks: stacks, Version: version, Logger: logger}
}

var _ wireserver.Handler = (*Handler)(nil)

// Handle serves one connection's content-fetch request.
func (h *Handler) Handle(ctx context.Context, remoteIP string, req []byte) []byte {
	if len(req) < protocol.MinContentFetchLen {
		return protocol.BuildStatusOnly(protocol.StatusTooSmall)
	}

	parsed, err := protocol.ParseContentFetchRequest(req)
	if err != nil {
		return protocol.BuildStatusOnly(protocol.StatusUnprocessable)
	}

	switch protocol.Compare(parsed.Version, h.Version) {
	case protocol.Equal:
	case protocol.Less:
		h.Logger.WarnContext(ctx, "content version mismatch", "ip", remoteIP, "client", parsed.Version, "server", h.Version)
		return protocol.BuildStatusOnly(protocol.StatusUpgradeRequired)
	default:
		h.Logger.WarnContext(ctx, "content version mismatch", "ip", remoteIP, "client", parsed.Version, "server", h.Version)
		return protocol.BuildStatusOnly(protocol.StatusDowngradeRequired)
	}

	stack, ok := firstRecognized(h.Stacks, parsed.Stacks)
	if !ok {
		return protocol.BuildStatusOnly(protocol.StatusUnprocessable)
	}

	path, err := SafePath(h.Root, parsed.Path)
	if err != nil {
		h.Logger.WarnContext(ctx, "path escaped content root", "ip", remoteIP, "path", parsed.Path)
		return protocol.BuildStatusOnly(protocol.StatusForbidden)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		h.Logger.InfoContext(ctx, "content not found", "path", path, "error", err)
		return protocol.BuildStatusOnly(protocol.StatusNotFound)
	}

	return protocol.BuildContentResponse(stack, body)
}

// firstRecognized returns the first tag in offered that appears in
// supported: the client's preference order wins, not the server's.
func firstRecognized(supported map[string]struct{}, offered []string) (string, bool) {
	for _, tag := range offered {
		if _, ok := supported[tag]; ok {
			return tag, true
		}
	}
	return "", false
}
