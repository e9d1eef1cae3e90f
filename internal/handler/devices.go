package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"canteen/internal/device"
)

// GetDevices lists registered devices. Tokens are never included.
func (h *Handler) GetDevices(c *gin.Context) {
	devices, err := h.devices.List(c.Request.Context())
	if err != nil {
		internalError(c, "list devices", err)
		return
	}
	if devices == nil {
		devices = []device.Device{}
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// PostDevices registers a device. The plaintext token appears in this response
// and nowhere else, ever.
func (h *Handler) PostDevices(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device name is required"})
		return
	}
	d, err := h.devices.Create(c.Request.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err != nil {
		internalError(c, "create device", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"device": d})
}

// DeleteDevice hard-deletes a device; its token stops working immediately.
func (h *Handler) DeleteDevice(c *gin.Context) {
	err := h.devices.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, device.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		internalError(c, "delete device", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
