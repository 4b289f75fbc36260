// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared
// dependencies.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/worker"
)

// ServiceName is reported by the health check.
const ServiceName = "listing-analyzer-api"

// Options are the handler settings that come from configuration.
type Options struct {
	SessionSecret  string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	AnalyzeTimeout time.Duration // 0 leaves analyze-pdf bound only by the client
	Version        string
}

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: just create a Handler with test dependencies.
type Handler struct {
	DB     *database.DB
	Worker *worker.Pool
	opts   Options
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(db *database.DB, wp *worker.Pool, opts Options) *Handler {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	return &Handler{
		DB:     db,
		Worker: wp,
		opts:   opts,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	// Check database connectivity
	status, dbStatus := "ok", "healthy"
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		logging.FromContext(c.Request.Context()).Warn("database health check failed", zap.Error(err))
		status, dbStatus = "degraded", "unhealthy"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   status,
		Service:  ServiceName,
		Version:  h.opts.Version,
		Database: dbStatus,
	})
}

// serverError logs err and answers with a generic 500.
func serverError(c *gin.Context, code, message string, err error) {
	logging.FromContext(c.Request.Context()).Error(message, zap.String("error_code", code), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    http.StatusInternalServerError,
	})
}
