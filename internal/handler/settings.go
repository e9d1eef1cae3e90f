package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen/internal/settings"
)

// GetSettings returns the current cutoff setting.
func (h *Handler) GetSettings(c *gin.Context) {
	cutoff, err := h.settings.OrderCutoff(c.Request.Context())
	if err != nil {
		internalError(c, "read settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": gin.H{"orderCutoff": cutoff}})
}

// PostSettings updates the cutoff. Anything but strict HH:MM is rejected
// without touching stored state.
func (h *Handler) PostSettings(c *gin.Context) {
	var req struct {
		OrderCutoff string `json:"orderCutoff"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderCutoff == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderCutoff required"})
		return
	}
	if err := h.settings.SetOrderCutoff(c.Request.Context(), req.OrderCutoff); err != nil {
		if errors.Is(err, settings.ErrInvalidCutoff) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "write settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": gin.H{"orderCutoff": req.OrderCutoff}})
}
