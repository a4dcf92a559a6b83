package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/cmd/config"
	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/database"
)

// newTestServer wires the real router without a database; the cases
// below all fail on auth or validation before any query runs.
func newTestServer(t *testing.T) (*Server, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:3000"},
		RateLimit:   "1000-M",
	}
	h := New(&database.DB{}, zap.NewNop(), tokens, nil)
	srv, err := NewServer(cfg, zap.NewNop(), h, tokens)
	require.NoError(t, err)
	return srv, tokens
}

func doRequest(srv *Server, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/videos"},
		{http.MethodGet, "/api/v1/users/current-user"},
		{http.MethodPost, "/api/v1/tweets"},
		{http.MethodGet, "/api/v1/dashboard/stats"},
		{http.MethodGet, "/api/v1/likes/videos"},
	}
	for _, p := range paths {
		w := doRequest(srv, p.method, p.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/v1/users/login", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(srv, http.MethodPost, "/api/v1/users/login", `{"password":"secret123"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/v1/users/register", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshTokenRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doRequest(srv, http.MethodPost, "/api/v1/users/refresh-token", "{}", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidObjectIDParamsAnswer400(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.GenerateAccessToken(primitive.NewObjectID().Hex(), "alice")
	require.NoError(t, err)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/videos/not-an-id"},
		{http.MethodDelete, "/api/v1/videos/not-an-id"},
		{http.MethodPost, "/api/v1/likes/toggle/v/not-an-id"},
		{http.MethodGet, "/api/v1/subscriptions/c/not-an-id"},
		{http.MethodPatch, "/api/v1/playlist/add/not-an-id/also-bad"},
	}
	for _, p := range paths {
		w := doRequest(srv, p.method, p.path, "", token)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s", p.method, p.path)
	}
}

func TestTweetValidation(t *testing.T) {
	srv, tokens := newTestServer(t)
	token, err := tokens.GenerateAccessToken(primitive.NewObjectID().Hex(), "alice")
	require.NoError(t, err)

	w := doRequest(srv, http.MethodPost, "/api/v1/tweets", `{"content":""}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	long := strings.Repeat("x", 281)
	w = doRequest(srv, http.MethodPost, "/api/v1/tweets", `{"content":"`+long+`"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelfSubscribeRejected(t *testing.T) {
	srv, tokens := newTestServer(t)
	userID := primitive.NewObjectID()
	token, err := tokens.GenerateAccessToken(userID.Hex(), "alice")
	require.NoError(t, err)

	w := doRequest(srv, http.MethodPost, "/api/v1/subscriptions/c/"+userID.Hex(), "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
