package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hvac-maintenance-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router around the handler's
// dependencies.
func NewRouter(handler *Handler, rateLimitPerSec float64, cacheTTL time.Duration) *gin.Engine {
	r := gin.Default()

	if rateLimitPerSec <= 0 {
		rateLimitPerSec = 10
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5)

	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/state", handler.GetState)

		api.POST("/works", handler.StartWork)
		api.PUT("/works/:id/notes", handler.UpdateNotes)
		api.POST("/works/:id/photos", handler.AddPhoto)
		api.POST("/works/:id/malfunction", handler.ToggleMalfunction)
		api.POST("/works/:id/complete", handler.CompleteWork)
		api.DELETE("/works/:id", handler.AbortWork)
		api.POST("/works/:id/edited", handler.MarkEdited)

		api.POST("/shift/close", handler.CloseShift)
		api.POST("/reset", handler.ResetSession)

		// The catalog is read-only; responses are cacheable.
		api.GET("/devices", caching, handler.GetDevices)
		api.GET("/devices/:id", caching, handler.GetDevice)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	// Update-cutover protocol endpoints.
	sw := r.Group("/sw")
	{
		sw.POST("/message", handler.PostCacheMessage)
		sw.GET("/status", handler.GetCacheStatus)
	}

	// App shell served through the offline asset cache.
	r.GET("/app/*filepath", handler.ServeAsset)

	return r
}
