package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetDevices handles the GET /api/devices request.
func (h *Handler) GetDevices(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Devices())
}

// GetDevice handles the GET /api/devices/:id request. Unknown ids resolve
// to placeholder metadata rather than a 404, matching the visit-start
// behavior: scanning an unregistered device still works.
func (h *Handler) GetDevice(c *gin.Context) {
	id := c.Param("id")
	device := h.catalog.Lookup(id)
	c.JSON(http.StatusOK, gin.H{
		"device":     device,
		"registered": h.catalog.Known(id),
	})
}
