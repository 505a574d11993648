package export

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printstock/internal/auth"
	"printstock/internal/common"
)

// Handler handles HTTP requests for inventory exports
type Handler struct {
	service *Service
}

// NewHandler creates a new export handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Export uploads a snapshot of the caller's inventory
// POST /api/v1/export
func (h *Handler) Export(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID required"})
		return
	}

	if !h.service.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export storage is not configured"})
		return
	}

	result, err := h.service.Export(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "export": result})
}
