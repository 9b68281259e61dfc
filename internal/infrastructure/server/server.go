package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/ernestbuffington/embedkit/internal/api/http"
	"github.com/ernestbuffington/embedkit/internal/api/middleware"
	"github.com/ernestbuffington/embedkit/internal/api/ws"
	"github.com/ernestbuffington/embedkit/internal/domain/cache"
	"github.com/ernestbuffington/embedkit/internal/domain/catalog"
	"github.com/ernestbuffington/embedkit/internal/domain/frame"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/config"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/tracing"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed/client"
	"github.com/ernestbuffington/embedkit/internal/providers/preview"
	"github.com/ernestbuffington/embedkit/internal/providers/sandbox"
	"github.com/ernestbuffington/embedkit/internal/shared/paths"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	registry *registry.Manager
	watcher  *registry.Watcher
	catalog  *catalog.Catalog
	store    *cache.Store
	pool     *sandbox.Pool
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	logger.Info("Initializing embedkit server",
		zap.String("port", cfg.Server.Port),
		zap.String("definitions_dir", cfg.Definitions.Dir),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize request tracing
	tracer := tracing.New("embedkit", logger.Logger)

	// Sandbox pool for provider callback scripts
	sandboxCfg := sandbox.DefaultConfig()
	sandboxCfg.Timeout = cfg.Pipeline.SandboxTimeout
	pool, err := sandbox.NewPool(sandboxCfg, cfg.Pipeline.SandboxPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox pool: %w", err)
	}
	logger.Info("Sandbox pool ready", zap.Int("size", cfg.Pipeline.SandboxPoolSize))

	// Outbound provider client
	httpClient := client.New()
	httpClient.SetTimeout(cfg.Client.Timeout)
	httpClient.SetRetry(cfg.Client.Retries, time.Second, cfg.Client.Timeout)
	if cfg.Client.RequestsPerSecond > 0 {
		httpClient.SetRateLimit(cfg.Client.RequestsPerSecond)
	}

	// Transport strategy chain. Order matters: the preview fallback
	// matches only the preview mode, so it can sit last.
	callbacks := oembed.NewCallbackRegistry()
	strategies := []oembed.Strategy{
		oembed.NewScriptStrategy(httpClient, pool, callbacks),
		oembed.NewJSONStrategy(httpClient),
	}
	if cfg.Preview.Enabled {
		strategies = append(strategies, preview.NewStrategy(httpClient))
	}

	// Provider definitions
	definitions := registry.NewManager()
	definitions.OnChange(func(count int) {
		metrics.Definitions.Set(float64(count))
	})
	seeder := registry.NewSeeder(definitions, cfg.Definitions.Dir, logger)
	if err := seeder.Seed(); err != nil {
		logger.Warn("Failed to seed provider definitions", zap.Error(err))
	}
	logger.Info("Provider definitions loaded", zap.Int("count", definitions.Count()))

	var watcher *registry.Watcher
	if cfg.Definitions.Watch {
		watcher, err = registry.NewWatcher(seeder, logger)
		if err != nil {
			logger.Warn("Definitions hot reload unavailable", zap.Error(err))
		} else {
			logger.Info("Watching definitions directory", zap.String("dir", cfg.Definitions.Dir))
		}
	}

	// Persistent response cache
	var store *cache.Store
	if cfg.Cache.Persist {
		if err := paths.EnsureParent(cfg.Cache.Path); err != nil {
			logger.Warn("Cache directory unavailable", zap.Error(err))
		} else if store, err = cache.OpenStore(cfg.Cache.Path); err != nil {
			logger.Warn("Persistent response cache unavailable", zap.Error(err))
			store = nil
		} else {
			logger.Info("Persistent response cache open", zap.String("path", cfg.Cache.Path))
		}
	}

	// Provider catalog
	cat := catalog.New(cfg.Catalog.URL, httpClient, logger)
	if cat.Enabled() {
		if err := cat.Start(cfg.Catalog.RefreshCron); err != nil {
			logger.Warn("Catalog refresh schedule invalid", zap.Error(err))
		} else {
			logger.Info("Provider catalog enabled",
				zap.String("url", cfg.Catalog.URL),
				zap.String("cron", cfg.Catalog.RefreshCron))
		}
	}

	// Session manager
	sessions := session.NewManager(session.Deps{
		Definitions: definitions,
		Strategies:  strategies,
		Pool:        pool,
		Store:       store,
		Metrics:     metrics,
		Logger:      logger,
		FrameOpts: frame.Options{
			ResizeInterval: cfg.Pipeline.ResizeInterval,
			Logger:         logger,
		},
		FrameCacheCap: cfg.Pipeline.FrameCacheCap,
	}, cfg.Snapshots.Dir)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins...))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := apihttp.NewHandlers(sessions, definitions, cat, metrics, logger)
	wsHandler := ws.NewHandler(sessions, cfg.Server.CORSOrigins, metrics, logger)

	// Register routes
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Session contexts
		v1.POST("/sessions", handlers.CreateSession)
		v1.GET("/sessions/:id", handlers.GetSession)
		v1.DELETE("/sessions/:id", handlers.DeleteSession)
		v1.POST("/sessions/:id/save", handlers.SaveSession)
		v1.POST("/sessions/:id/restore", handlers.RestoreSession)
		v1.GET("/snapshots", handlers.ListSnapshots)

		// Consumers
		v1.POST("/consumers", handlers.SpawnConsumer)
		v1.GET("/consumers/:id", handlers.GetConsumer)
		v1.DELETE("/consumers/:id", handlers.DeleteConsumer)

		// Pipeline
		v1.POST("/resolve", handlers.Resolve)
		v1.POST("/validate", handlers.Validate)

		// Registry and catalog
		v1.GET("/definitions", handlers.ListDefinitions)
		v1.GET("/definitions/:name", handlers.GetDefinition)
		v1.GET("/catalog/lookup", handlers.CatalogLookup)

		// Introspection
		v1.GET("/cache/stats", handlers.CacheStats)
		v1.GET("/frames", handlers.ListFrames)
	}

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		sessions: sessions,
		registry: definitions,
		watcher:  watcher,
		catalog:  cat,
		store:    store,
		pool:     pool,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.sessions.CloseAll()
	s.catalog.Stop()

	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			s.logger.Warn("Failed to close definitions watcher", zap.Error(err))
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close response store", zap.Error(err))
		}
	}
	if err := s.pool.Close(); err != nil {
		s.logger.Warn("Failed to close sandbox pool", zap.Error(err))
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
