package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-optimizer/internal/api/handlers"
	"github.com/andresuchdata/inventory-optimizer/internal/api/middleware"
	"github.com/andresuchdata/inventory-optimizer/internal/service"
)

type Services struct {
	UploadService    *service.UploadService
	AnalyticsService *service.AnalyticsService
	// DB is reported by the health check when set.
	DB handlers.Pinger
}

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.SessionID())
	router.Use(middleware.Logger("/health"))

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	var db handlers.Pinger
	if services != nil {
		db = services.DB
	}
	router.GET("/health", handlers.NewHealthHandler(db).Health)

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.UploadService != nil {
			uploadHandler := handlers.NewUploadHandler(services.UploadService, opts.MaxUploadBytes)
			apiGroup.POST("/upload", uploadHandler.Upload)
			apiGroup.GET("/upload", uploadHandler.Status)
		}

		if services.AnalyticsService != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.AnalyticsService)
			apiGroup.GET("/config", analyticsHandler.GetConfig)
			apiGroup.POST("/config", analyticsHandler.SetConfig)
			apiGroup.PUT("/config", analyticsHandler.SetConfig)

			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.GET("", analyticsHandler.GetAnalytics)
				analyticsGroup.POST("", analyticsHandler.ReplaceAnalytics)
				analyticsGroup.POST("/runs", analyticsHandler.CreateRun)
				analyticsGroup.GET("/runs", analyticsHandler.ListRuns)
				analyticsGroup.GET("/runs/:id/results", analyticsHandler.GetRunResults)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		errorResponse(c, http.StatusNotFound, "route not found: "+c.Request.URL.Path)
	})

	return router
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Warn().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
