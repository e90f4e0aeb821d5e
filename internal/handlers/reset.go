package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResetLedger - POST /api/reset
// Удалить все продажи перед новым спектаклем
func (h *Handlers) ResetLedger(c *gin.Context) {
	deleted, err := h.services.Reset.ResetLedger(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reset ledger")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ledger reset successfully", "deleted": deleted})
}
