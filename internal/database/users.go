// users.go handles user-related database operations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

// CreateUser inserts a new user record and fills in its ID and timestamps.
// Returns ErrDuplicate when the username or email is already taken.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt

	query := db.Rebind(`
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByLogin looks a user up by username or email address. Emails are
// stored lower-cased and compared that way; an exact username match wins
// over an email match.
func (db *DB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	email := strings.ToLower(login)
	err := db.GetContext(ctx, &u, db.Rebind(`SELECT * FROM users
		WHERE username = ? OR email = ?
		ORDER BY CASE WHEN username = ? THEN 0 ELSE 1 END
		LIMIT 1`), login, email, login)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := db.GetContext(ctx, &u, db.Rebind(`SELECT * FROM users WHERE id = ?`), id)
	if err != nil {
		return nil, notFound("user", err)
	}
	return &u, nil
}

// notFound maps sql.ErrNoRows to ErrNotFound and wraps anything else.
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
