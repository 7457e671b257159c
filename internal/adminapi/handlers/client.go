package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/wireweb/internal/adminapi/models"
)

// ListStacks godoc
// @Summary List registered content stacks
// @Tags client
// @Produce json
// @Success 200 {object} models.StackList
// @Security ApiKeyAuth
// @Router /client/stacks [get]
func (h *Handler) ListStacks(c *gin.Context) {
	if h.Client == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "client store not configured"})
		return
	}
	stacks, err := h.Client.ListStacks()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]models.StackEntry, 0, len(stacks))
	for _, st := range stacks {
		out = append(out, models.StackEntry{Tag: st.Tag, Library: st.Library})
	}
	c.JSON(http.StatusOK, models.StackList{Stacks: out, Count: len(out)})
}

// GetStack godoc
// @Summary Get a registered content stack
// @Tags client
// @Produce json
// @Param tag path string true "Five-byte stack tag"
// @Success 200 {object} models.StackEntry
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /client/stacks/{tag} [get]
func (h *Handler) GetStack(c *gin.Context) {
	if h.Client == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "client store not configured"})
		return
	}
	stack, ok, err := h.Client.GetStack(c.Param("tag"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "stack not registered"})
		return
	}
	c.JSON(http.StatusOK, models.StackEntry{Tag: stack.Tag, Library: stack.Library})
}

// PutStack godoc
// @Summary Register or replace a content stack
// @Tags client
// @Accept json
// @Produce json
// @Param stack body models.StackEntry true "Stack"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /client/stacks [put]
func (h *Handler) PutStack(c *gin.Context) {
	if h.Client == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "client store not configured"})
		return
	}
	var m models.StackEntry
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.Client.PutStack(m.Tag, m.Library); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// DeleteEphemeralEntry godoc
// @Summary Evict a client-side ephemeral cache entry
// @Tags client
// @Produce json
// @Param url path string true "Cached URL"
// @Success 200 {object} models.StatusResponse
// @Security ApiKeyAuth
// @Router /client/ephemeral/{url} [delete]
func (h *Handler) DeleteEphemeralEntry(c *gin.Context) {
	if h.Client == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "client store not configured"})
		return
	}
	if err := h.Client.DeleteEndpoint(c.Param("url")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}
