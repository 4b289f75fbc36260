// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization and
// `db` tags for sqlx column mapping. The database package handles persistence;
// nothing here talks to the database directly.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User is a registered account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // "-" means never serialize to JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Session is a server-side login record. Only the hash of the token's
// session id is stored, never the token itself.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// ExtractedData holds the named listing fields pulled out of a document.
// It is stored as a JSON object (JSONB on PostgreSQL, TEXT on SQLite).
type ExtractedData map[string]string

// Value implements driver.Valuer.
// Go Pattern: Implementing Valuer/Scanner lets a custom type travel through
// database/sql transparently, the same way time.Time does.
func (d ExtractedData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Drivers hand JSON back as []byte or string.
func (d *ExtractedData) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = ExtractedData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("extracted_data: unsupported type %T", src)
	}

	out := ExtractedData{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("extracted_data: %w", err)
		}
	}
	*d = out
	return nil
}

// Analysis is one stored result of analyzing an uploaded listing PDF.
type Analysis struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	Filename         string        `json:"filename" db:"filename"`                   // Name we stored it under
	OriginalFilename string        `json:"original_filename" db:"original_filename"` // Name the client sent
	ExtractedData    ExtractedData `json:"extracted_data" db:"extracted_data"`
	MarkdownContent  string        `json:"markdown_content" db:"markdown_content"` // Converted document text
	FileSize         int64         `json:"file_size" db:"file_size"`
	PageCount        int           `json:"page_count" db:"page_count"`
	Source           string        `json:"source" db:"source"` // Which converter produced the text
	AnalysisDate     time.Time     `json:"analysis_date" db:"analysis_date"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---
// Go Pattern: Separate structs for API input/output vs database models.
// This keeps your API contract clean and independent of your database schema.

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"` // bcrypt ignores bytes past 72
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
// Username may also hold the account's email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SessionToken string `json:"session_token"`
	User         User   `json:"user"`
}

// UserResponse is returned by GET /api/v1/auth/me.
type UserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// AnalysisResult is the response of POST /api/v1/analyze-pdf.
// AnalysisID is only set when the result was saved for a signed-in user.
type AnalysisResult struct {
	Success         bool          `json:"success"`
	Filename        string        `json:"filename"`
	MarkdownContent string        `json:"markdown_content"`
	ExtractedData   ExtractedData `json:"extracted_data"`
	Error           string        `json:"error,omitempty"`
	AnalysisID      string        `json:"analysis_id,omitempty"`
}

// AnalysisListResponse is returned by GET /api/v1/analyses.
type AnalysisListResponse struct {
	Success  bool       `json:"success"`
	Analyses []Analysis `json:"analyses"`
}

// AnalysisResponse is returned by GET /api/v1/analyses/:id.
type AnalysisResponse struct {
	Success  bool     `json:"success"`
	Analysis Analysis `json:"analysis"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}
