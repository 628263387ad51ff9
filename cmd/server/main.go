package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-optimizer/internal/api"
	"github.com/andresuchdata/inventory-optimizer/internal/cache"
	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/repository"
	"github.com/andresuchdata/inventory-optimizer/internal/repository/postgres"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
	"github.com/andresuchdata/inventory-optimizer/internal/storage"
	"github.com/andresuchdata/inventory-optimizer/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	level := cfg.Log.Level
	if level == "" {
		level = cfg.Server.Mode
	}
	logger.SetLevel(level)
	logger.SetFormat(cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	sessions, err := cache.NewSessionStore(cfg.Cache)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize session store")
	}
	defer sessions.Close()

	objects, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	services := &api.Services{}
	var runs repository.CalculationRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		runs = postgres.NewCalculationRepository(db)
		services.DB = db
	} else {
		logger.Log.Warn().Msg("Database disabled; calculation runs will not be persisted")
	}

	defaults := cfg.Engine.CalculationDefaults()
	services.UploadService = service.NewUploadService(sessions, objects, defaults, cfg.Engine.UploadPreviewLimit)
	services.AnalyticsService = service.NewAnalyticsService(sessions, runs, defaults, cfg.Engine.ResultPreviewLimit)

	router := api.NewRouter(services, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
	})

	// Initialize HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
