package spool

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"printstock/internal/auth"
	"printstock/internal/common"
)

// Handler handles HTTP requests for filament spools
type Handler struct {
	service *Service
}

// NewHandler creates a new spool handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns all spools for the caller
// GET /api/v1/spools
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spools, err := h.service.List(userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spools": spools})
}

// Get returns one spool
// GET /api/v1/spools/:id
func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	spool, err := h.service.Get(userID, spoolID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spool)
}

// Create registers one spool
// POST /api/v1/spools
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	var req CreateSpoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	spool, err := h.service.Create(userID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spool)
}

// BatchCreate registers several identical spools atomically
// POST /api/v1/spools/batch
func (h *Handler) BatchCreate(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	var req BatchCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	spools, err := h.service.BatchCreate(userID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"spools": spools, "count": len(spools)})
}

// Delete removes a spool and its usage ledger
// DELETE /api/v1/spools/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	if err := h.service.Delete(userID, spoolID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkOpened marks a spool as opened
// POST /api/v1/spools/:id/open
func (h *Handler) MarkOpened(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	var req MarkOpenedRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	spool, err := h.service.MarkOpened(userID, spoolID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spool)
}

// RecordUsage appends a usage record; over-consumption succeeds with a
// warning field instead of an error
// POST /api/v1/spools/:id/usage
func (h *Handler) RecordUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.RecordUsage(userID, spoolID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListUsage returns the usage ledger for one spool
// GET /api/v1/spools/:id/usage
func (h *Handler) ListUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	spoolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid spool ID"})
		return
	}

	records, err := h.service.ListUsage(userID, spoolID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": records})
}

// UpdateUsage edits a usage record and recomputes the parent spool
// PUT /api/v1/spools/usage/:usageId
func (h *Handler) UpdateUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	usageID, err := uuid.Parse(c.Param("usageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid usage record ID"})
		return
	}

	var req UpdateUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.UpdateUsage(userID, usageID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteUsage removes a usage record and recomputes the parent spool
// DELETE /api/v1/spools/usage/:usageId
func (h *Handler) DeleteUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	usageID, err := uuid.Parse(c.Param("usageId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid usage record ID"})
		return
	}

	result, err := h.service.DeleteUsage(userID, usageID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
