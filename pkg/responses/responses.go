package responses

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the shared envelope every endpoint answers with.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Pagination is attached to list endpoints driven by page/limit params.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	TotalDocs  int64 `json:"total_docs"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

type PaginatedResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func Paginated(c *gin.Context, data interface{}, p Pagination, message string) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Response: Response{
			Success:   true,
			Data:      data,
			Message:   message,
			Timestamp: time.Now().UTC(),
		},
		Pagination: p,
	})
}

// Error writes the envelope with Success false. Handlers pass the status
// they mean; nothing here inspects the error.
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// NewPagination derives page metadata from the count the query returned.
func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		TotalDocs:  total,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}
