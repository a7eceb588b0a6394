package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hvac-maintenance-backend/internal/assetcache"
)

// ServeAsset handles GET /app/*filepath through the asset cache controller.
func (h *Handler) ServeAsset(c *gin.Context) {
	assetPath := c.Param("filepath")
	if len(assetPath) > 0 && assetPath[0] == '/' {
		assetPath = assetPath[1:]
	}
	resp := h.cache.Fetch(c.Request.Context(), assetPath)
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(resp.Status, contentType, resp.Body)
}

// PostCacheMessage handles POST /sw/message, the inbound half of the
// update-cutover protocol.
func (h *Handler) PostCacheMessage(c *gin.Context) {
	var msg assetcache.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.cache.HandleMessage(msg)
	c.Status(http.StatusAccepted)
}

// GetCacheStatus handles GET /sw/status for diagnostics.
func (h *Handler) GetCacheStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cache.CurrentStatus())
}
