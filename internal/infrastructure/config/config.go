package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/ernestbuffington/embedkit/internal/shared/paths"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Logging     LogConfig
	RateLimit   RateLimitConfig
	Pipeline    PipelineConfig
	Client      ClientConfig
	Definitions DefinitionsConfig
	Cache       CacheConfig
	Catalog     CatalogConfig
	Preview     PreviewConfig
	Snapshots   SnapshotConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// CORSOrigins pins allowed origins; empty allows any host.
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration for the HTTP surface.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// PipelineConfig holds acquisition pipeline configuration.
type PipelineConfig struct {
	// ResizeInterval is the frame content-height poll period
	ResizeInterval time.Duration `envconfig:"RESIZE_INTERVAL" default:"250ms"`
	// FrameCacheCap bounds the per-URL captured-subtree list
	FrameCacheCap int `envconfig:"FRAME_CACHE_CAP" default:"8"`
	// SandboxPoolSize is the number of pooled script runtimes
	SandboxPoolSize int `envconfig:"SANDBOX_POOL_SIZE" default:"4"`
	// SandboxTimeout bounds one provider-script evaluation
	SandboxTimeout time.Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s"`
}

// ClientConfig holds the outbound provider HTTP client configuration.
type ClientConfig struct {
	Timeout           time.Duration `envconfig:"CLIENT_TIMEOUT" default:"30s"`
	Retries           int           `envconfig:"CLIENT_RETRIES" default:"3"`
	RequestsPerSecond float64       `envconfig:"CLIENT_RPS" default:"0"`
}

// DefinitionsConfig holds provider definition loading configuration.
type DefinitionsConfig struct {
	// Dir is the definitions directory; empty selects the standard layout
	Dir string `envconfig:"DEFINITIONS_DIR" default:""`
	// Watch enables fsnotify hot reload of the definitions directory
	Watch bool `envconfig:"DEFINITIONS_WATCH" default:"false"`
}

// CacheConfig holds response-cache configuration.
type CacheConfig struct {
	// Persist enables the SQLite-backed response-cache mirror
	Persist bool `envconfig:"CACHE_PERSIST" default:"false"`
	// Path overrides the database location; empty selects the standard layout
	Path string `envconfig:"CACHE_PATH" default:""`
}

// CatalogConfig holds the public provider-catalog configuration.
type CatalogConfig struct {
	// URL of the providers directory; empty disables the catalog
	URL string `envconfig:"CATALOG_URL" default:""`
	// RefreshCron schedules catalog refreshes
	RefreshCron string `envconfig:"CATALOG_REFRESH_CRON" default:"0 */6 * * *"`
}

// PreviewConfig holds the page-preview fallback configuration.
type PreviewConfig struct {
	Enabled bool `envconfig:"PREVIEW_ENABLED" default:"true"`
}

// SnapshotConfig holds session snapshot configuration.
type SnapshotConfig struct {
	// Dir overrides the snapshot location; empty selects the standard layout
	Dir string `envconfig:"SNAPSHOTS_DIR" default:""`
}

// Load loads configuration from EMBEDKIT_-prefixed environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("EMBEDKIT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.applyPathDefaults()
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Pipeline: PipelineConfig{
			ResizeInterval:  250 * time.Millisecond,
			FrameCacheCap:   8,
			SandboxPoolSize: 4,
			SandboxTimeout:  5 * time.Second,
		},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		Catalog: CatalogConfig{
			RefreshCron: "0 */6 * * *",
		},
		Preview: PreviewConfig{
			Enabled: true,
		},
	}
	cfg.applyPathDefaults()
	return cfg
}

// applyPathDefaults fills empty path fields from the standard data layout.
func (c *Config) applyPathDefaults() {
	if c.Definitions.Dir == "" {
		c.Definitions.Dir = paths.DefinitionsDir()
	}
	if c.Cache.Path == "" {
		c.Cache.Path = paths.CacheDB()
	}
	if c.Snapshots.Dir == "" {
		c.Snapshots.Dir = paths.SnapshotsDir()
	}
}
