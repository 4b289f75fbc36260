// session.go provides bearer-token session authentication.
//
// A session token is an HS256 JWT carrying the user's id and name plus a
// random session id (sid). The database only stores the SHA-256 hash of the
// sid, so a token is valid while its signature verifies, it hasn't expired
// and its session row still exists. Deleting the row (logout) revokes the
// token immediately.
package middleware

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

const (
	userContextKey      = "user"
	tokenHashContextKey = "session_token_hash"
)

// SessionClaims extends standard JWT claims with user info.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionStore resolves a session hash to its user. *database.DB
// satisfies it.
type SessionStore interface {
	GetUserBySession(ctx context.Context, tokenHash string) (*models.User, error)
}

// IssuedToken is a freshly signed token and the hash to store for it.
type IssuedToken struct {
	Token     string
	TokenHash string
	ExpiresAt time.Time
}

// IssueToken signs a new session token for user that expires after ttl.
func IssueToken(user *models.User, secret string, ttl time.Duration) (*IssuedToken, error) {
	// Go Pattern: crypto/rand is the cryptographically secure random source.
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	sid := base64.RawURLEncoding.EncodeToString(raw)

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &IssuedToken{Token: signed, TokenHash: HashSessionID(sid), ExpiresAt: expiresAt}, nil
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// HashSessionID creates the SHA-256 hash stored for a session id.
// We store hashes, not raw ids: same principle as password hashing.
func HashSessionID(sid string) string {
	hash := sha256.Sum256([]byte(sid))
	return fmt.Sprintf("%x", hash)
}

var errNoBearer = errors.New("missing bearer token")

// authenticate resolves the request's bearer token to a user.
func authenticate(c *gin.Context, store SessionStore, secret string) (*models.User, string, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, "", errNoBearer
	}

	claims, err := ParseToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), secret)
	if err != nil {
		return nil, "", err
	}

	hash := HashSessionID(claims.SessionID)
	user, err := store.GetUserBySession(c.Request.Context(), hash)
	if err != nil {
		return nil, "", err
	}
	return user, hash, nil
}

// RequireSession returns middleware that rejects requests without a valid
// session token.
func RequireSession(store SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, hash, err := authenticate(c, store, secret)
		if err != nil {
			if !errors.Is(err, errNoBearer) {
				logging.FromContext(c.Request.Context()).Debug("session rejected", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Not authenticated",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Set(tokenHashContextKey, hash)
		c.Next()
	}
}

// OptionalSession sets the user when a valid token is present and lets the
// request through anonymously otherwise.
func OptionalSession(store SessionStore, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, hash, err := authenticate(c, store, secret); err == nil {
			c.Set(userContextKey, user)
			c.Set(tokenHashContextKey, hash)
		}
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the request context.
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	// Go Pattern: Type assertion with the comma-ok idiom won't panic on a
	// wrong type.
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// GetTokenHash returns the stored hash of the current session, or "".
func GetTokenHash(c *gin.Context) string {
	return c.GetString(tokenHashContextKey)
}
