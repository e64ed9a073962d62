// Package main provides the main entry point for the notification hub service
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/notification-hub/app/handlers"
	"github.com/amirphl/notification-hub/app/middleware"
	"github.com/amirphl/notification-hub/app/router"
	"github.com/amirphl/notification-hub/app/scheduler"
	"github.com/amirphl/notification-hub/app/services"
	businessflow "github.com/amirphl/notification-hub/business_flow"
	"github.com/amirphl/notification-hub/config"
	"github.com/amirphl/notification-hub/migrations"
	"github.com/amirphl/notification-hub/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	draftFlow businessflow.DraftFlow
	stopFuncs []func()
}

func main() {
	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logOutput, closeLog := initializeLogging(cfg.Logging)
	defer closeLog()
	log.SetOutput(logOutput)

	log.Printf("Starting notification hub %s (%s)...", cfg.Deployment.Version, cfg.Deployment.Environment)

	// Initialize application
	app, err := initializeApplication(cfg, logOutput)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	// Let background estimates settle before their store goes away
	if err := app.draftFlow.WaitForEstimates(shutdownCtx); err != nil {
		log.Printf("Pending estimates abandoned: %v", err)
	}

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger to stdout, a rotating file, or both
func initializeLogging(cfg config.LoggingConfig) (io.Writer, func()) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return os.Stdout, func() {}
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	closeFn := func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}

	if cfg.Output == "file" {
		return file, closeFn
	}
	return io.MultiWriter(os.Stdout, file), closeFn
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig, logOutput io.Writer) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if cfg.SlowQueryLog {
		gormCfg.Logger = gormlogger.New(
			log.New(logOutput, "gorm ", log.LstdFlags|log.LUTC),
			gormlogger.Config{
				SlowThreshold:             cfg.SlowQueryTime,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis.
// The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeDraftStore picks where working drafts live
func initializeDraftStore(cfg *config.ProductionConfig, rc *redis.Client) (repository.DraftStore, error) {
	switch cfg.Notification.DraftStore {
	case config.DraftStoreRedis:
		if rc == nil {
			return nil, errors.New("redis draft store requires CACHE_ENABLED=true")
		}
		return repository.NewRedisDraftStore(rc, cfg.Cache.RedisPrefix, cfg.Notification.DraftSessionTTL), nil
	default:
		return repository.NewMemoryDraftStore(cfg.Notification.DraftSessionTTL), nil
	}
}

// initializeEstimator picks the audience size provider
func initializeEstimator(cfg config.EstimatorConfig, db *gorm.DB) services.AudienceEstimator {
	switch cfg.Provider {
	case config.EstimatorDatabase:
		return services.NewDatabaseAudienceEstimator(repository.NewAudienceMemberRepository(db), cfg.QueryTimeout)
	default:
		return services.NewMockAudienceEstimator(cfg.MockDelay, cfg.MockMax)
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig, logOutput io.Writer) (*Application, error) {
	var stopFuncs []func()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.URL()); err != nil {
			return nil, err
		}
	}

	db, err := initializeDatabase(cfg.Database, logOutput)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		stopFuncs = append(stopFuncs, startCacheHealthMonitor(context.Background(), rc, 0))
	}

	draftStore, err := initializeDraftStore(cfg, rc)
	if err != nil {
		return nil, err
	}

	// Initialize repositories and services
	notificationRepo := repository.NewNotificationRepository(db)
	estimator := initializeEstimator(cfg.Estimator, db)

	tokenService, err := services.NewTokenService(
		cfg.JWT.SessionTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize business flows
	notificationFlow := businessflow.NewNotificationFlow(notificationRepo, estimator, cfg.Notification)
	draftFlow := businessflow.NewDraftFlow(draftStore, notificationRepo, estimator, tokenService, cfg.Notification, cfg.Estimator)

	// Initialize handlers and middleware
	notificationHandler := handlers.NewNotificationHandler(notificationFlow)
	draftHandler := handlers.NewDraftHandler(draftFlow)
	sessionMiddleware := middleware.NewSessionMiddleware(tokenService)

	appRouter := router.NewFiberRouter(cfg, logOutput, notificationHandler, draftHandler, sessionMiddleware)

	if cfg.Scheduler.Enabled {
		expiryScheduler := scheduler.NewExpiryScheduler(
			notificationFlow,
			log.New(logOutput, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC),
			cfg.Scheduler.ExpiryInterval,
		)
		stopFuncs = append(stopFuncs, expiryScheduler.Start(context.Background()))
	}

	stopFuncs = append(stopFuncs, func() {
		if rc != nil {
			if err := rc.Close(); err != nil {
				log.Printf("Failed to close redis: %v", err)
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return &Application{
		router:    appRouter,
		config:    cfg,
		server:    appRouter.GetApp(),
		draftFlow: draftFlow,
		stopFuncs: stopFuncs,
	}, nil
}
