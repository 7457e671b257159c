// Package handlers_test provides behavior tests for the admin API handlers.
package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/wireweb/internal/adminapi/handlers"
	"github.com/jroosing/wireweb/internal/config"
	authoritystore "github.com/jroosing/wireweb/internal/store/authority"
	cachestore "github.com/jroosing/wireweb/internal/store/cache"
	clientstore "github.com/jroosing/wireweb/internal/store/client"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestHandler(t *testing.T) *handlers.Handler {
	t.Helper()
	cfg := &config.Config{}
	h := handlers.New(cfg, nil)

	auth, err := authoritystore.Open(filepath.Join(t.TempDir(), "authority.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = auth.Close() })
	h.Authority = auth

	cache, err := cachestore.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	h.Cache = cache

	client, err := clientstore.Open(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	h.Client = client

	return h
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
