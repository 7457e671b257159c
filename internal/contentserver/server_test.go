package contentserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/wireweb/internal/protocol"
)

var testVersion = protocol.Version{Major: 1, Minor: 0, Patch: 0}

func newTestHandler(t *testing.T, stacks map[string]struct{}) *Handler {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.md"), []byte("# hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "blog", "post.md"), []byte("post body"), 0o644))
	return NewHandler(root, stacks, testVersion, nil)
}

func TestContentHandleSuccess(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	req := protocol.ContentFetchRequest{Version: testVersion, Stacks: []string{"mdown"}, Path: "index.md"}
	resp := h.Handle(context.Background(), "1.2.3.4", req.Marshal())

	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusSuccess, got.Status)
	assert.Equal(t, "mdown", got.Stack)
	assert.Equal(t, "# hello", string(got.Body))
}

func TestContentHandlePicksFirstRecognizedStack(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	req := protocol.ContentFetchRequest{Version: testVersion, Stacks: []string{"html!", "mdown"}, Path: "index.md"}
	resp := h.Handle(context.Background(), "1.2.3.4", req.Marshal())

	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "mdown", got.Stack)
}

func TestContentHandleUnprocessableWhenNoStackRecognized(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	req := protocol.ContentFetchRequest{Version: testVersion, Stacks: []string{"html!"}, Path: "index.md"}
	resp := h.Handle(context.Background(), "1.2.3.4", req.Marshal())

	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusUnprocessable, got.Status)
}

func TestContentHandleNotFound(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	req := protocol.ContentFetchRequest{Version: testVersion, Stacks: []string{"mdown"}, Path: "missing.md"}
	resp := h.Handle(context.Background(), "1.2.3.4", req.Marshal())

	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusNotFound, got.Status)
}

func TestContentHandleForbiddenOnPathEscape(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	req := protocol.ContentFetchRequest{Version: testVersion, Stacks: []string{"mdown"}, Path: "../../etc/passwd"}
	resp := h.Handle(context.Background(), "1.2.3.4", req.Marshal())

	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusForbidden, got.Status)
}

func TestContentHandleTooSmall(t *testing.T) {
	h := newTestHandler(t, map[string]struct{}{"mdown": {}})
	resp := h.Handle(context.Background(), "1.2.3.4", []byte{1, 2, 3})
	got, err := protocol.ParseContentFetchResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusTooSmall, got.Status)
}
