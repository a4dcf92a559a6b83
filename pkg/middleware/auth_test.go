package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bgmanu2426/playnex-backend/pkg/auth"
)

func authTestRouter(tokens *auth.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.String(http.StatusInternalServerError, "claims missing")
			return
		}
		c.String(http.StatusOK, claims.Username)
	})
	return r
}

func TestRequireAuthMissingToken(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := authTestRouter(tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := authTestRouter(tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsRefreshToken(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := authTestRouter(tokens)

	refresh, err := tokens.GenerateRefreshToken(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthBearerHeader(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := authTestRouter(tokens)

	token, err := tokens.GenerateAccessToken(primitive.NewObjectID().Hex(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())
}

func TestRequireAuthCookieFallback(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	r := authTestRouter(tokens)

	token, err := tokens.GenerateAccessToken(primitive.NewObjectID().Hex(), "bob")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", w.Body.String())
}

func TestCurrentUserID(t *testing.T) {
	tokens := auth.NewTokenManager("a", "r", time.Minute, time.Hour)
	userID := primitive.NewObjectID()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/id", RequireAuth(tokens), func(c *gin.Context) {
		id, ok := CurrentUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.Hex())
	})

	token, err := tokens.GenerateAccessToken(userID.Hex(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, userID.Hex(), w.Body.String())
}
