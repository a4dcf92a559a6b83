package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bgmanu2426/playnex-backend/pkg/middleware"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// findOneAndUpdateAfter asks the driver for the post-update document.
func findOneAndUpdateAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// objectIDParam parses a path parameter as an ObjectID, answering 400
// itself when the value is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// requireUserID pulls the authenticated user's id set by the auth
// middleware; answers 401 when the route was reached without it.
func requireUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		responses.Error(c, http.StatusUnauthorized, "authentication required")
		return primitive.NilObjectID, false
	}
	return id, true
}

// paginationParams reads page/limit query params, clamping both to sane
// bounds.
func paginationParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
