package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	BlobStore  BlobStoreConfig  `yaml:"blob_store"`
	AssetCache AssetCacheConfig `yaml:"asset_cache"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// SessionConfig holds the maintenance session settings.
type SessionConfig struct {
	// MaxPastWorks caps how many completed works are persisted.
	MaxPastWorks int `yaml:"max_past_works"`
	// ExecutorID identifies the operator of this installation.
	ExecutorID string `yaml:"executor_id"`
	// MaxStateBytes is the quota of the structured state store.
	MaxStateBytes int `yaml:"max_state_bytes"`
	// DemoAssetsDir holds the demo photo files seeded on first launch.
	DemoAssetsDir string `yaml:"demo_assets_dir"`
	// Shift manager contact shown on the overview.
	ShiftManagerName  string `yaml:"shift_manager_name"`
	ShiftManagerPhone string `yaml:"shift_manager_phone"`
}

// BlobStoreConfig holds the photo blob store settings.
type BlobStoreConfig struct {
	Path string `yaml:"path"`
}

// AssetCacheConfig holds the offline asset cache settings.
type AssetCacheConfig struct {
	Root     string   `yaml:"root"`
	Version  string   `yaml:"version"` // defaults to $BUILD_SHA (short) or "dev"
	Upstream string   `yaml:"upstream"`
	Manifest []string `yaml:"manifest"`
}

// CatalogConfig holds the device catalog settings.
type CatalogConfig struct {
	// Path of the device catalog YAML file. Empty selects the built-in
	// demo catalog.
	Path string `yaml:"path"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Session.MaxPastWorks <= 0 {
		cfg.Session.MaxPastWorks = 50
	}
	if cfg.Session.MaxStateBytes <= 0 {
		cfg.Session.MaxStateBytes = 512 * 1024
	}
	if cfg.Session.ShiftManagerName == "" {
		cfg.Session.ShiftManagerName = "Ivanics Károly"
	}
	if cfg.Session.ShiftManagerPhone == "" {
		cfg.Session.ShiftManagerPhone = "+36301234567"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "maintenance.db"
	}
	if cfg.BlobStore.Path == "" {
		cfg.BlobStore.Path = "photos"
	}
	if cfg.AssetCache.Root == "" {
		cfg.AssetCache.Root = "asset-cache"
	}
	if cfg.AssetCache.Version == "" {
		cfg.AssetCache.Version = buildVersion()
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}

// buildVersion derives the cache version token from the build environment,
// falling back to "dev" for local runs.
func buildVersion() string {
	sha := os.Getenv("BUILD_SHA")
	if sha == "" {
		sha = os.Getenv("GITHUB_SHA")
	}
	if sha == "" {
		return "dev"
	}
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return sha
}
