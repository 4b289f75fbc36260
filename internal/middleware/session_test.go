// session_test.go: Unit tests for session tokens and the auth middleware.
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/database"
	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore knows a fixed set of session hashes.
type fakeStore map[string]*models.User

func (f fakeStore) GetUserBySession(_ context.Context, hash string) (*models.User, error) {
	if u, ok := f[hash]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

var alice = &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com"}

// TestHashSessionID verifies that hashing is deterministic and produces
// 64 hex characters.
func TestHashSessionID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		if HashSessionID("sid") != HashSessionID("sid") {
			t.Error("HashSessionID is not deterministic")
		}
	})

	t.Run("different inputs different outputs", func(t *testing.T) {
		if HashSessionID("one") == HashSessionID("two") {
			t.Error("HashSessionID produced same hash for different inputs")
		}
	})

	t.Run("known value", func(t *testing.T) {
		// SHA-256 of the empty string
		want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
		if got := HashSessionID(""); got != want {
			t.Errorf("HashSessionID(\"\") = %q, want %q", got, want)
		}
	})
}

func TestIssueAndParseToken(t *testing.T) {
	issued, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)
	assert.Len(t, issued.TokenHash, 64)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := ParseToken(issued.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, claims.UserID)
	assert.Equal(t, alice.Username, claims.Username)
	assert.Equal(t, issued.TokenHash, HashSessionID(claims.SessionID))

	other, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, issued.TokenHash, other.TokenHash, "every login gets its own session")
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := IssueToken(alice, testSecret, -time.Minute)
	require.NoError(t, err)

	valid, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		UserID: alice.ID, SessionID: "x",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		UserID:           alice.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"expired", expired.Token, testSecret},
		{"wrong secret", valid.Token, "other-secret"},
		{"alg none", unsigned, testSecret},
		{"missing session id", noSID, testSecret},
		{"garbage", "not.a.token", testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			assert.Error(t, err)
		})
	}
}

// newAuthRouter mounts a probe route behind the given middleware.
func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, user.Username+" "+GetTokenHash(c))
	})
	return r
}

func doProbe(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	issued, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)
	revoked, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)

	store := fakeStore{issued.TokenHash: alice}
	r := newAuthRouter(RequireSession(store, testSecret))

	t.Run("valid token", func(t *testing.T) {
		w := doProbe(r, "Bearer "+issued.Token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "alice "+issued.TokenHash, w.Body.String())
	})

	for name, header := range map[string]string{
		"no header":       "",
		"wrong scheme":    "Basic " + issued.Token,
		"bad token":       "Bearer nope",
		"session deleted": "Bearer " + revoked.Token,
	} {
		t.Run(name, func(t *testing.T) {
			w := doProbe(r, header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Not authenticated")
		})
	}
}

func TestOptionalSession(t *testing.T) {
	issued, err := IssueToken(alice, testSecret, time.Hour)
	require.NoError(t, err)

	r := newAuthRouter(OptionalSession(fakeStore{issued.TokenHash: alice}, testSecret))

	assert.Equal(t, "alice "+issued.TokenHash, doProbe(r, "Bearer "+issued.Token).Body.String())
	assert.Equal(t, "anonymous", doProbe(r, "").Body.String())

	w := doProbe(r, "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}
