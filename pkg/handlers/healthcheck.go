package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// Healthcheck reports liveness and whether the database answers a ping.
func (h *Handler) Healthcheck(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		responses.Error(c, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	responses.OK(c, gin.H{"status": "ok"}, "healthy")
}
