package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hvac-maintenance-backend/config"
	"hvac-maintenance-backend/internal/api"
	"hvac-maintenance-backend/internal/assetcache"
	"hvac-maintenance-backend/internal/blobstore"
	"hvac-maintenance-backend/internal/catalog"
	"hvac-maintenance-backend/internal/db"
	"hvac-maintenance-backend/internal/kv"
	"hvac-maintenance-backend/internal/ledger"
	"hvac-maintenance-backend/internal/notification"
	"hvac-maintenance-backend/internal/seed"
	"hvac-maintenance-backend/internal/session"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "maintd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database (ledger key/value tier + subscriptions)
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Device catalog
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatalf("failed to load device catalog: %v", err)
	}

	// Photo blob store
	blobs := blobstore.New(cfg.BlobStore.Path)
	defer blobs.Close()

	// Work ledger over the quota-bound key/value store
	kvStore := kv.NewGormStore(gormDB, cfg.Session.MaxStateBytes)
	seedPast := seed.PastWorks(cat.Devices(), time.Now())
	ledgerStore := ledger.New(kvStore, seedPast, cfg.Session.MaxPastWorks)

	// Maintenance session: structured state loads synchronously, photos
	// hydrate in the background.
	sess := session.New(session.Options{
		Catalog:  cat,
		Ledger:   ledgerStore,
		Blobs:    blobs,
		Identity: session.StaticIdentity(cfg.Session.ExecutorID),
	})
	go sess.Run(ctx)
	go func() {
		if cfg.Session.DemoAssetsDir != "" {
			if err := blobs.SeedDemoPhotos(ctx, cfg.Session.DemoAssetsDir); err != nil {
				logger.Printf("Warning: failed to seed demo photos: %v", err)
			}
		}
		sess.AttachDemoPhotos(ctx, blobstore.DemoPhotoIDs())
		sess.HydratePhotos(ctx)
	}()
	logger.Println("maintenance session initialized")

	// Offline asset cache controller
	cacheCtl := assetcache.New(assetcache.Config{
		Root:     cfg.AssetCache.Root,
		Version:  cfg.AssetCache.Version,
		Upstream: cfg.AssetCache.Upstream,
		Manifest: cfg.AssetCache.Manifest,
	})
	go func() {
		if err := cacheCtl.Register(ctx); err != nil {
			logger.Printf("Warning: asset cache registration failed: %v", err)
		}
	}()
	go func() {
		for ev := range cacheCtl.Events() {
			logger.Printf("asset cache event: %s", ev)
		}
	}()

	// Notification worker pool
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	pool.Start(ctx)

	// Initialize router
	handler := api.NewHandler(sess, cat, gormDB, &webpushOptions, pool, cacheCtl, &cfg.Session)
	router := api.NewRouter(handler, cfg.Server.RateLimitPerSec, time.Duration(cfg.Server.CacheTTLSeconds)*time.Second)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	// Stop background workers and flush the last session state.
	cancel()
	sess.PersistNow()

	logger.Println("Server gracefully stopped")
}
