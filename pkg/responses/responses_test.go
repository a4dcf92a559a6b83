package responses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestOKEnvelope(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		OK(c, gin.H{"answer": 42}, "done")
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "done", body["message"])
	assert.NotEmpty(t, body["timestamp"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(42), data["answer"])
}

func TestCreatedStatus(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		Created(c, nil, "made")
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestErrorEnvelope(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		Error(c, http.StatusNotFound, "missing")
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "missing", body["message"])
	_, hasData := body["data"]
	assert.False(t, hasData)
}

func TestPaginatedEnvelope(t *testing.T) {
	w, body := record(t, func(c *gin.Context) {
		Paginated(c, []int{1, 2, 3}, NewPagination(2, 3, 7), "page two")
	})

	assert.Equal(t, http.StatusOK, w.Code)
	p := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), p["page"])
	assert.Equal(t, float64(3), p["total_pages"])
	assert.Equal(t, float64(7), p["total_docs"])
	assert.Equal(t, true, p["has_next"])
	assert.Equal(t, true, p["has_prev"])
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		total       int64
		wantPages   int
		hasNext     bool
		hasPrev     bool
	}{
		{"first of many", 1, 10, 35, 4, true, false},
		{"middle", 2, 10, 35, 4, true, true},
		{"last", 4, 10, 35, 4, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty", 1, 10, 0, 0, false, false},
		{"single page", 1, 10, 5, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.hasNext, p.HasNext)
			assert.Equal(t, tt.hasPrev, p.HasPrev)
		})
	}
}
