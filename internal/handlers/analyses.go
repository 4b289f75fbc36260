// analyses.go handles PDF listing analysis endpoints.
//
// POST   /api/v1/analyze-pdf   Upload a listing PDF and extract its fields
// GET    /api/v1/analyses      List the caller's saved analyses
// GET    /api/v1/analyses/:id  Get one saved analysis
// DELETE /api/v1/analyses/:id  Delete one saved analysis
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
	pdfservice "github.com/Shimizu-Technology/listing-analyzer-api/internal/services/pdf"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/services/worker"
)

// AnalyzePDF handles a listing upload.
// POST /api/v1/analyze-pdf
//
// Accepts multipart file upload with field name "file". Anyone may analyze;
// the result is saved only when the request carries a valid session.
func (h *Handler) AnalyzePDF(c *gin.Context) {
	log := logging.FromContext(c.Request.Context())

	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	// Get the uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("File exceeds the %d MB upload limit", h.opts.MaxUploadBytes>>20),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "No file provided. Upload a PDF with the field name 'file'.",
			Code:    http.StatusBadRequest,
		})
		return
	}
	defer file.Close()

	// Validate file extension
	if strings.ToLower(filepath.Ext(header.Filename)) != ".pdf" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_file_type",
			Message: "File must be a PDF",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Go Pattern: io.ReadAll reads the entire reader into a byte slice.
	// Both converters need the whole document anyway.
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "read_error",
			Message: "Failed to read uploaded file",
			Code:    http.StatusBadRequest,
		})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "empty_file",
			Message: "PDF is empty",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Validate PDF magic bytes
	if !pdfservice.ValidatePDF(data) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_pdf",
			Message: "The uploaded file does not appear to be a valid PDF",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// WriteTimeout does not cancel the request context, so bound the wait here.
	ctx := c.Request.Context()
	if h.opts.AnalyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.AnalyzeTimeout)
		defer cancel()
	}

	result, err := h.Worker.Analyze(ctx, data)
	if err != nil {
		switch {
		case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "busy",
				Message: "The analyzer is busy. Try again shortly.",
				Code:    http.StatusServiceUnavailable,
			})
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Warn("PDF analysis timed out",
				zap.String("filename", header.Filename),
				zap.Duration("timeout", h.opts.AnalyzeTimeout),
			)
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "timeout",
				Message: "PDF analysis took too long. Try again shortly.",
				Code:    http.StatusServiceUnavailable,
			})
			return
		}

		log.Error("PDF analysis failed", zap.String("filename", header.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.AnalysisResult{
			Success:  false,
			Filename: header.Filename,
			Error:    "Failed to analyze PDF: " + err.Error(),
		})
		return
	}

	resp := models.AnalysisResult{
		Success:         true,
		Filename:        header.Filename,
		MarkdownContent: result.Text,
		ExtractedData:   models.ExtractedData(result.Fields),
	}

	// Only signed-in users get a saved copy.
	if user := middleware.GetUser(c); user != nil {
		a := &models.Analysis{
			UserID:           user.ID,
			Filename:         uuid.NewString() + ".pdf",
			OriginalFilename: header.Filename,
			ExtractedData:    resp.ExtractedData,
			MarkdownContent:  result.Text,
			FileSize:         int64(len(data)),
			PageCount:        result.PageCount,
			Source:           result.Source,
		}
		if err := h.DB.CreateAnalysis(c.Request.Context(), a); err != nil {
			// Still return the result even if the save fails
			log.Error("failed to save analysis", zap.Error(err))
		} else {
			resp.AnalysisID = a.ID
		}
	}

	log.Info("PDF analyzed",
		zap.String("filename", header.Filename),
		zap.String("source", result.Source),
		zap.Bool("commercial", result.Commercial),
		zap.Int("fields", len(result.Fields)),
		zap.Int("pages", result.PageCount),
	)
	c.JSON(http.StatusOK, resp)
}

// ListAnalyses returns the caller's analyses, newest first.
// GET /api/v1/analyses?limit=50
func (h *Handler) ListAnalyses(c *gin.Context) {
	user := middleware.GetUser(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "limit must be a positive integer",
				Code:    http.StatusBadRequest,
			})
			return
		}
		limit = n
	}

	analyses, err := h.DB.ListAnalyses(c.Request.Context(), user.ID, limit)
	if err != nil {
		serverError(c, "database_error", "Failed to list analyses", err)
		return
	}

	c.JSON(http.StatusOK, models.AnalysisListResponse{Success: true, Analyses: analyses})
}

// GetAnalysis returns one of the caller's analyses.
// GET /api/v1/analyses/:id
func (h *Handler) GetAnalysis(c *gin.Context) {
	a, ok := h.loadAnalysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.AnalysisResponse{Success: true, Analysis: *a})
}

// DeleteAnalysis removes one of the caller's analyses.
// DELETE /api/v1/analyses/:id
func (h *Handler) DeleteAnalysis(c *gin.Context) {
	user := middleware.GetUser(c)

	err := h.DB.DeleteAnalysis(c.Request.Context(), c.Param("id"), user.ID)
	if errors.Is(err, database.ErrNotFound) {
		analysisNotFound(c)
		return
	}
	if err != nil {
		serverError(c, "database_error", "Failed to delete analysis", err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Success: true, Message: "Analysis deleted"})
}

// loadAnalysis fetches the :id analysis for the caller, writing the error
// response itself when it can't.
func (h *Handler) loadAnalysis(c *gin.Context) (*models.Analysis, bool) {
	user := middleware.GetUser(c)

	a, err := h.DB.GetAnalysis(c.Request.Context(), c.Param("id"), user.ID)
	if errors.Is(err, database.ErrNotFound) {
		analysisNotFound(c)
		return nil, false
	}
	if err != nil {
		serverError(c, "database_error", "Failed to load analysis", err)
		return nil, false
	}
	return a, true
}

func analysisNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "Analysis not found",
		Code:    http.StatusNotFound,
	})
}
