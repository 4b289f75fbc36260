// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/config"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/handlers"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/worker"
)

// Setup creates and configures the Gin router with all routes. The returned
// func stops the rate limiters' background cleanup; call it on shutdown.
func Setup(cfg *config.Config, db *database.DB, wp *worker.Pool, log *zap.Logger, version string) (*gin.Engine, func()) {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	h := handlers.NewHandler(db, wp, handlers.Options{
		SessionSecret:  cfg.SessionSecret,
		SessionTTL:     cfg.SessionTTL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AnalyzeTimeout: cfg.AnalyzeTimeout,
		Version:        version,
	})

	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute)
	analyzeLimiter := middleware.NewRateLimiter(cfg.AnalyzeRatePerMinute)
	stop := func() {
		authLimiter.Stop()
		analyzeLimiter.Stop()
	}

	requireSession := middleware.RequireSession(db, cfg.SessionSecret)
	optionalSession := middleware.OptionalSession(db, cfg.SessionSecret)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPI)

	api := r.Group("/api/v1")

	// --- Auth Routes: public, limited per client IP ---
	auth := api.Group("/auth")
	{
		limited := authLimiter.Middleware(middleware.ByClientIP)
		auth.POST("/register", limited, h.Register)
		auth.POST("/login", limited, h.Login)
		auth.POST("/logout", requireSession, h.Logout)
		auth.GET("/me", requireSession, h.GetMe)
	}

	// --- Analysis: anyone may upload; signed-in users get it saved ---
	api.POST("/analyze-pdf", optionalSession, analyzeLimiter.Middleware(middleware.ByUserOrIP), h.AnalyzePDF)

	// --- Session-protected routes ---
	protected := api.Group("/analyses")
	protected.Use(requireSession)
	{
		protected.GET("", h.ListAnalyses)
		protected.GET("/export", h.ExportAllAnalyses) // static segment wins over :id
		protected.GET("/:id", h.GetAnalysis)
		protected.GET("/:id/export", h.ExportAnalysis)
		protected.DELETE("/:id", h.DeleteAnalysis)
	}

	return r, stop
}
