package accessory

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"printstock/internal/auth"
	"printstock/internal/common"
)

// Handler handles HTTP requests for accessories
type Handler struct {
	service *Service
}

// NewHandler creates a new accessory handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns all accessories for the caller
// GET /api/v1/accessories
func (h *Handler) List(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessories, err := h.service.List(userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessories": accessories})
}

// Get returns one accessory
// GET /api/v1/accessories/:id
func (h *Handler) Get(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	accessory, err := h.service.Get(userID, accessoryID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessory)
}

// Create registers an accessory
// POST /api/v1/accessories
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	var req CreateAccessoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	accessory, err := h.service.Create(userID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accessory)
}

// Delete removes an accessory unless it is checked out
// DELETE /api/v1/accessories/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	if err := h.service.Delete(userID, accessoryID); err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecordUsage consumes stock; exceeding remaining stock is a hard error
// POST /api/v1/accessories/:id/usage
func (h *Handler) RecordUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.RecordUsage(userID, accessoryID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListUsage returns the usage ledger for one accessory
// GET /api/v1/accessories/:id/usage
func (h *Handler) ListUsage(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	records, err := h.service.ListUsage(userID, accessoryID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": records})
}

// StartUsing checks out a durable accessory for exclusive use
// POST /api/v1/accessories/:id/start
func (h *Handler) StartUsing(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	accessory, err := h.service.StartUsing(userID, accessoryID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessory)
}

// StopUsing checks a durable accessory back in, capturing the session
// POST /api/v1/accessories/:id/stop
func (h *Handler) StopUsing(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	var req StopUsingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result, err := h.service.StopUsing(userID, accessoryID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Restock adds units to an accessory
// POST /api/v1/accessories/:id/restock
func (h *Handler) Restock(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	accessory, err := h.service.Restock(userID, accessoryID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessory)
}

// MarkReplaced records a replacement for the cycle alert
// POST /api/v1/accessories/:id/replaced
func (h *Handler) MarkReplaced(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	accessoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid accessory ID"})
		return
	}

	var req MarkReplacedRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	accessory, err := h.service.MarkReplaced(userID, accessoryID, &req)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accessory)
}

// Alerts returns the replacement-due and stock alert projection
// GET /api/v1/accessories/alerts
func (h *Handler) Alerts(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	alerts, err := h.service.Alerts(userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}
