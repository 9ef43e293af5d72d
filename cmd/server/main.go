package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	maintapp "github.com/fms/backend/internal/application/maintenance"
	stockapp "github.com/fms/backend/internal/application/stock"
	"github.com/fms/backend/internal/infrastructure/cache"
	"github.com/fms/backend/internal/infrastructure/config"
	"github.com/fms/backend/internal/infrastructure/logger"
	"github.com/fms/backend/internal/infrastructure/persistence"
	"github.com/fms/backend/internal/interfaces/http/handler"
	"github.com/fms/backend/internal/interfaces/http/middleware"
	"github.com/fms/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize the display-name cache backend
	var nameCache cache.NameCache
	switch cfg.Cache.Backend {
	case "redis":
		nameCache, err = cache.NewRedisNameCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Cache.TTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Redis name cache connected", zap.String("addr", cfg.Redis.Addr()))
	default:
		nameCache = cache.NewInMemoryNameCache(cfg.Cache.TTL)
		log.Info("In-memory name cache initialized")
	}
	defer func() {
		if err := nameCache.Close(); err != nil {
			log.Error("Error closing name cache", zap.Error(err))
		}
	}()

	// Name resolution: master data lookups behind the cache
	nameDirectory := persistence.NewGormNameDirectory(db.DB)
	resolver := cache.NewCachedNameResolver(nameDirectory, nameCache, cfg.Cache.TTL, log)

	// Initialize repositories and transaction scopes
	entryRepo := persistence.NewGormStockEntryRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	requestRepo := persistence.NewGormRequestRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	workRepo := persistence.NewGormWorkRepository(db.DB)
	stockScope := persistence.NewGormStockTransactionScope(db.DB)
	maintenanceScope := persistence.NewGormMaintenanceTransactionScope(db.DB)

	// Initialize application services
	stockService := stockapp.NewStockService(stockScope, entryRepo, movementRepo, resolver)
	maintenanceService := maintapp.NewMaintenanceService(maintenanceScope, requestRepo, planRepo, workRepo)

	// Initialize HTTP handlers
	stockHandler := handler.NewStockHandler(stockService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	systemHandler := handler.NewSystemHandler(db.Ping)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())

	// Probes live outside API versioning
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	// Register domain routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(stockHandler).
		Register(maintenanceHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
