package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boxoffice/internal/models"
)

// GetSettings - GET /api/settings
// Текущая цена билета
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.services.Settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings - PUT /api/settings
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.services.Settings.UpdateTicketPrice(c.Request.Context(), *req.TicketPrice)
	if err != nil {
		respondError(c, err, "Failed to update settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}
