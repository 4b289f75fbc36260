// analyses.go persists listing analyses. Every read and delete is scoped to
// the owning user; another user's analysis looks exactly like a missing one.
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

// List limits for ListAnalyses.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// CreateAnalysis inserts a new analysis and fills in its ID. AnalysisDate
// is set to now unless the caller already set it.
func (db *DB) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	a.ID = uuid.NewString()
	if a.AnalysisDate.IsZero() {
		a.AnalysisDate = now()
	} else {
		a.AnalysisDate = a.AnalysisDate.UTC()
	}
	if a.ExtractedData == nil {
		a.ExtractedData = models.ExtractedData{}
	}

	query := db.Rebind(`
		INSERT INTO pdf_analyses (id, user_id, filename, original_filename, extracted_data,
			markdown_content, file_size, page_count, source, analysis_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Filename, a.OriginalFilename, a.ExtractedData,
		a.MarkdownContent, a.FileSize, a.PageCount, a.Source, a.AnalysisDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns a user's analyses, newest first. limit defaults to
// DefaultListLimit and is capped at MaxListLimit.
func (db *DB) ListAnalyses(ctx context.Context, userID string, limit int) ([]models.Analysis, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	analyses := []models.Analysis{}
	err := db.SelectContext(ctx, &analyses, db.Rebind(`
		SELECT * FROM pdf_analyses
		WHERE user_id = ?
		ORDER BY analysis_date DESC
		LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

// AllAnalyses returns every analysis a user owns, newest first. Used by the
// bulk exports.
func (db *DB) AllAnalyses(ctx context.Context, userID string) ([]models.Analysis, error) {
	analyses := []models.Analysis{}
	err := db.SelectContext(ctx, &analyses, db.Rebind(`
		SELECT * FROM pdf_analyses
		WHERE user_id = ?
		ORDER BY analysis_date DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return analyses, nil
}

// GetAnalysis retrieves one analysis owned by userID.
func (db *DB) GetAnalysis(ctx context.Context, id, userID string) (*models.Analysis, error) {
	// PostgreSQL rejects malformed UUIDs with a syntax error; treat them as missing.
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("analysis: %w", ErrNotFound)
	}

	var a models.Analysis
	err := db.GetContext(ctx, &a,
		db.Rebind(`SELECT * FROM pdf_analyses WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return nil, notFound("analysis", err)
	}
	return &a, nil
}

// DeleteAnalysis removes one analysis owned by userID.
func (db *DB) DeleteAnalysis(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("analysis: %w", ErrNotFound)
	}

	result, err := db.ExecContext(ctx,
		db.Rebind(`DELETE FROM pdf_analyses WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("analysis: %w", ErrNotFound)
	}
	return nil
}
