package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/wireweb/internal/adminapi/handlers"
	"github.com/jroosing/wireweb/internal/adminapi/models"
)

func clientRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.GET("/client/stacks", h.ListStacks)
	r.GET("/client/stacks/:tag", h.GetStack)
	r.PUT("/client/stacks", h.PutStack)
	r.DELETE("/client/ephemeral/:url", h.DeleteEphemeralEntry)
	return r
}

func TestListStacks_Empty(t *testing.T) {
	h := createTestHandler(t)
	router := clientRouter(h)

	w := performRequest(router, http.MethodGet, "/client/stacks", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StackList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestPutAndGetStack(t *testing.T) {
	h := createTestHandler(t)
	router := clientRouter(h)

	w := performRequest(router, http.MethodPut, "/client/stacks", `{"stack":"MRKDN","library":"/opt/wireweb/stacks/markdown.so"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/client/stacks/MRKDN", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var st models.StackEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, "MRKDN", st.Tag)
	assert.Equal(t, "/opt/wireweb/stacks/markdown.so", st.Library)
}

func TestGetStack_NotFound(t *testing.T) {
	h := createTestHandler(t)
	router := clientRouter(h)

	w := performRequest(router, http.MethodGet, "/client/stacks/XXXXX", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutStack_InvalidTagLength(t *testing.T) {
	h := createTestHandler(t)
	router := clientRouter(h)

	w := performRequest(router, http.MethodPut, "/client/stacks", `{"stack":"TOOLONG","library":"/lib.so"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEphemeralEntry(t *testing.T) {
	h := createTestHandler(t)
	require.NoError(t, h.Client.PutEndpoint("example.web", "10.0.0.2:6204"))

	router := clientRouter(h)
	w := performRequest(router, http.MethodDelete, "/client/ephemeral/example.web", "")
	assert.Equal(t, http.StatusOK, w.Code)

	_, ok, err := h.Client.GetEndpoint("example.web")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClientHandlers_NoStore(t *testing.T) {
	h := createTestHandler(t)
	h.Client = nil
	router := clientRouter(h)

	w := performRequest(router, http.MethodGet, "/client/stacks", "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}
