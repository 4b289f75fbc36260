// sessions.go stores login sessions. A session row is keyed by the SHA-256
// hash of the random session id carried inside the bearer token.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

// CreateSession inserts a session for userID that expires after ttl.
func (db *DB) CreateSession(ctx context.Context, userID, tokenHash string, ttl time.Duration) (*models.Session, error) {
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: now(),
	}
	s.ExpiresAt = s.CreatedAt.Add(ttl)

	query := db.Rebind(`
		INSERT INTO user_sessions (id, user_id, token_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`)

	if _, err := db.ExecContext(ctx, query, s.ID, s.UserID, s.TokenHash, s.CreatedAt, s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return s, nil
}

// GetUserBySession returns the owner of an unexpired session.
// Expired or unknown sessions yield ErrNotFound.
func (db *DB) GetUserBySession(ctx context.Context, tokenHash string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, db.Rebind(`
		SELECT u.* FROM users u
		JOIN user_sessions s ON s.user_id = u.id
		WHERE s.token_hash = ? AND s.expires_at > ?`), tokenHash, now())
	if err != nil {
		return nil, notFound("session", err)
	}
	return &u, nil
}

// DeleteSession removes a session (logout).
func (db *DB) DeleteSession(ctx context.Context, tokenHash string) error {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM user_sessions WHERE token_hash = ?`), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session: %w", ErrNotFound)
	}
	return nil
}

// DeleteExpiredSessions removes every session whose expiry has passed and
// returns how many were removed.
func (db *DB) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM user_sessions WHERE expires_at <= ?`), now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
