// auth.go handles user registration, login and session endpoints.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/logging"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/middleware"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

func invalidRegistration(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Username (3-64 chars), a valid email and a password (8-72 chars) are required",
		Code:    http.StatusBadRequest,
	})
}

// Register creates a new user account and signs it in.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRegistration(c)
		return
	}

	// Binding sees the raw value; the length rule applies to what is stored.
	username := strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 64 {
		invalidRegistration(c)
		return
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(c, "server_error", "Failed to create account", err)
		return
	}

	user := &models.User{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
	}

	// The unique indexes decide; no check-then-insert race.
	if err := h.DB.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "user_exists",
				Message: "Username or email already registered",
				Code:    http.StatusConflict,
			})
			return
		}
		serverError(c, "database_error", "Failed to create account", err)
		return
	}

	token, err := h.startSession(c, user)
	if err != nil {
		serverError(c, "session_error", "Account created but failed to start a session", err)
		return
	}

	logging.FromContext(c.Request.Context()).Info("user registered", zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, models.AuthResponse{
		Success:      true,
		Message:      "Registration successful",
		SessionToken: token,
		User:         *user,
	})
}

// Login authenticates a user by username or email and returns a session
// token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Username and password are required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	// Look up user
	user, err := h.DB.GetUserByLogin(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		serverError(c, "database_error", "Failed to log in", err)
		return
	}

	// Verify password
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid username or password",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	token, err := h.startSession(c, user)
	if err != nil {
		serverError(c, "session_error", "Failed to start a session", err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Success:      true,
		Message:      "Login successful",
		SessionToken: token,
		User:         *user,
	})
}

// Logout deletes the current session; its token stops working at once.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	err := h.DB.DeleteSession(c.Request.Context(), middleware.GetTokenHash(c))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		serverError(c, "database_error", "Failed to log out", err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Success: true,
		Message: "Logged out",
	})
}

// GetMe returns the current authenticated user.
// GET /api/v1/auth/me
func (h *Handler) GetMe(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "Not authenticated",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{Success: true, User: *user})
}

// startSession signs a token for user and stores its session row.
func (h *Handler) startSession(c *gin.Context, user *models.User) (string, error) {
	issued, err := middleware.IssueToken(user, h.opts.SessionSecret, h.opts.SessionTTL)
	if err != nil {
		return "", err
	}
	if _, err := h.DB.CreateSession(c.Request.Context(), user.ID, issued.TokenHash, h.opts.SessionTTL); err != nil {
		return "", err
	}
	return issued.Token, nil
}
