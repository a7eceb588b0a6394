package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hvac-maintenance-backend/config"
	"hvac-maintenance-backend/internal/assetcache"
	"hvac-maintenance-backend/internal/catalog"
	"hvac-maintenance-backend/internal/notification"
	"hvac-maintenance-backend/internal/session"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	session *session.Session
	catalog *catalog.Catalog
	db      *gorm.DB
	webpush *webpush.Options
	pool    *notification.WorkerPool
	cache   *assetcache.Controller
	cfg     *config.SessionConfig
}

// NewHandler creates a new API handler.
func NewHandler(s *session.Session, cat *catalog.Catalog, db *gorm.DB, webpushOptions *webpush.Options, pool *notification.WorkerPool, cache *assetcache.Controller, cfg *config.SessionConfig) *Handler {
	return &Handler{
		session: s,
		catalog: cat,
		db:      db,
		webpush: webpushOptions,
		pool:    pool,
		cache:   cache,
		cfg:     cfg,
	}
}
