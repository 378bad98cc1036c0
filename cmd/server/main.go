package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sticctape/barkeep-backend/config"
	"github.com/sticctape/barkeep-backend/internal/app/controller"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/internal/app/service"
	"github.com/sticctape/barkeep-backend/internal/auth"
	"github.com/sticctape/barkeep-backend/internal/db"
	"github.com/sticctape/barkeep-backend/internal/middleware"
	"github.com/sticctape/barkeep-backend/internal/router"
	"github.com/sticctape/barkeep-backend/internal/scheduler"
	"github.com/sticctape/barkeep-backend/internal/storage"
	"github.com/sticctape/barkeep-backend/pkg/logger"
	appRedis "github.com/sticctape/barkeep-backend/pkg/redis"
	"github.com/sticctape/barkeep-backend/pkg/upc"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Barkeep Inventory API", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	if cfg.Auth.AllowHeaderDev && cfg.Server.Environment != "development" {
		logger.Fatal("ALLOW_HEADER_DEV must not be enabled outside development", nil)
	}

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Rate limiter: process-local by default, Redis-backed when configured
	// for multi-instance deployments.
	var limiter middleware.Limiter
	var memLimiter *middleware.MemoryRateLimiter
	if cfg.RateLimit.Backend == "redis" {
		if err := appRedis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis rate-limit backend", err)
		}
		defer appRedis.Close()
		limiter = middleware.NewRedisRateLimiter(appRedis.GetClient(), cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	} else {
		memLimiter = middleware.NewMemoryRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
		limiter = memLimiter
	}

	// Initialize repositories
	bottleRepo := repository.NewBottleRepository(db.GetDB())
	tagRepo := repository.NewTagRepository(db.GetDB())

	// Initialize services
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)
	bottleService := service.NewBottleService(bottleRepo, tagRepo)
	imageService := service.NewImageService(bottleRepo, s3Storage)

	upcClient, err := upc.NewClient(upc.Config{
		BaseURL: cfg.UPC.BaseURL,
		Timeout: cfg.UPC.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create UPC client", err)
	}

	// Initialize controllers
	authController := controller.NewAuthController()
	bottleController := controller.NewBottleController(bottleService)
	imageController := controller.NewImageController(imageService)
	upcController := controller.NewUPCController(upcClient)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(auth.NewResolver(cfg.Auth))

	// Setup router
	r := router.NewRouter(
		authController,
		bottleController,
		imageController,
		upcController,
		authMiddleware,
		limiter,
		cfg,
	)
	engine := r.Setup()

	// Sweep idle rate-limit buckets when running the in-memory backend.
	if memLimiter != nil {
		sweeper := scheduler.NewBucketSweeper(memLimiter)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start bucket sweeper", err)
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
