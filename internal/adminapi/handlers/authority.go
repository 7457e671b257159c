package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jroosing/wireweb/internal/adminapi/models"
	authoritystore "github.com/jroosing/wireweb/internal/store/authority"
)

func toAuthorityModel(rec authoritystore.Record) models.AuthorityRecord {
	m := models.AuthorityRecord{Name: rec.Name}
	if rec.DomainIP.Valid {
		m.DomainIP = rec.DomainIP.String
		m.DomainPort = rec.DomainPort.Int64
	}
	if rec.DNSIP.Valid {
		m.DNSIP = rec.DNSIP.String
		m.DNSPort = rec.DNSPort.Int64
	}
	return m
}

func fromAuthorityModel(m models.AuthorityRecord) authoritystore.Record {
	rec := authoritystore.Record{Name: m.Name}
	if m.DomainIP != "" {
		rec.DomainIP = sql.NullString{String: m.DomainIP, Valid: true}
		rec.DomainPort = sql.NullInt64{Int64: m.DomainPort, Valid: true}
	}
	if m.DNSIP != "" {
		rec.DNSIP = sql.NullString{String: m.DNSIP, Valid: true}
		rec.DNSPort = sql.NullInt64{Int64: m.DNSPort, Valid: true}
	}
	return rec
}

// ListAuthorityRecords godoc
// @Summary List authority records
// @Description Lists every row of the authority server's dns_records table
// @Tags authority
// @Produce json
// @Success 200 {object} models.AuthorityRecordList
// @Security ApiKeyAuth
// @Router /authority/records [get]
func (h *Handler) ListAuthorityRecords(c *gin.Context) {
	if h.Authority == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "authority store not configured"})
		return
	}
	recs, err := h.Authority.ListRecords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	out := make([]models.AuthorityRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, toAuthorityModel(r))
	}
	c.JSON(http.StatusOK, models.AuthorityRecordList{Records: out, Count: len(out)})
}

// GetAuthorityRecord godoc
// @Summary Get an authority record
// @Tags authority
// @Produce json
// @Param name path string true "Record name"
// @Success 200 {object} models.AuthorityRecord
// @Failure 404 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /authority/records/{name} [get]
func (h *Handler) GetAuthorityRecord(c *gin.Context) {
	if h.Authority == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "authority store not configured"})
		return
	}
	name := c.Param("name")
	rec, ok, err := h.Authority.GetRecord(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "record not found"})
		return
	}
	c.JSON(http.StatusOK, toAuthorityModel(rec))
}

// PutAuthorityRecord godoc
// @Summary Create or replace an authority record
// @Tags authority
// @Accept json
// @Produce json
// @Param record body models.AuthorityRecord true "Record"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.ErrorResponse
// @Security ApiKeyAuth
// @Router /authority/records [put]
func (h *Handler) PutAuthorityRecord(c *gin.Context) {
	if h.Authority == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "authority store not configured"})
		return
	}
	var m models.AuthorityRecord
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.Authority.UpsertRecord(fromAuthorityModel(m)); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// DeleteAuthorityRecord godoc
// @Summary Delete an authority record
// @Tags authority
// @Produce json
// @Param name path string true "Record name"
// @Success 200 {object} models.StatusResponse
// @Security ApiKeyAuth
// @Router /authority/records/{name} [delete]
func (h *Handler) DeleteAuthorityRecord(c *gin.Context) {
	if h.Authority == nil {
		c.JSON(http.StatusNotImplemented, models.ErrorResponse{Error: "authority store not configured"})
		return
	}
	if err := h.Authority.DeleteRecord(c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}
