package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// ListComments pages through a video's comments, newest first, with
// owners resolved.
func (h *Handler) ListComments(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	page, limit := paginationParams(c)

	ctx := c.Request.Context()
	filter := bson.M{"video": videoID}
	total, err := h.db.Comments.CountDocuments(ctx, filter)
	if err != nil {
		h.internalError(c, "failed to list comments", err)
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: int64((page - 1) * limit)}},
		{{Key: "$limit", Value: int64(limit)}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "ownerDetails",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$ownerDetails",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
	cursor, err := h.db.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		h.internalError(c, "failed to list comments", err)
		return
	}
	comments := []models.CommentWithOwner{}
	if err := cursor.All(ctx, &comments); err != nil {
		h.internalError(c, "failed to list comments", err)
		return
	}

	responses.Paginated(c, comments, responses.NewPagination(page, limit, total), "comments")
}

type commentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

// AddComment creates a comment on a video.
func (h *Handler) AddComment(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "comment content is required (max 1000 characters)")
		return
	}

	ctx := c.Request.Context()
	count, err := h.db.Videos.CountDocuments(ctx, bson.M{"_id": videoID})
	if err != nil {
		h.internalError(c, "failed to add comment", err)
		return
	}
	if count == 0 {
		responses.Error(c, http.StatusNotFound, "video not found")
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		Content:   strings.TrimSpace(req.Content),
		Video:     videoID,
		Owner:     callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := h.db.Comments.InsertOne(ctx, comment)
	if err != nil {
		h.internalError(c, "failed to add comment", err)
		return
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)
	responses.Created(c, comment, "comment added")
}

// UpdateComment edits a comment's content. Owner only.
func (h *Handler) UpdateComment(c *gin.Context) {
	commentID, ok := objectIDParam(c, "commentId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "comment content is required (max 1000 characters)")
		return
	}

	ctx := c.Request.Context()
	if _, ok := h.loadOwnedComment(ctx, c, commentID, callerID); !ok {
		return
	}

	var updated models.Comment
	err := h.db.Comments.FindOneAndUpdate(
		ctx,
		bson.M{"_id": commentID},
		bson.M{"$set": bson.M{
			"content":   strings.TrimSpace(req.Content),
			"updatedAt": time.Now().UTC(),
		}},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.internalError(c, "failed to update comment", err)
		return
	}
	responses.OK(c, updated, "comment updated")
}

// DeleteComment removes a comment and its likes. Owner only.
func (h *Handler) DeleteComment(c *gin.Context) {
	commentID, ok := objectIDParam(c, "commentId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, ok := h.loadOwnedComment(ctx, c, commentID, callerID); !ok {
		return
	}

	if _, err := h.db.Comments.DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		h.internalError(c, "failed to delete comment", err)
		return
	}
	if _, err := h.db.Likes.DeleteMany(ctx, bson.M{"comment": commentID}); err != nil {
		h.internalError(c, "failed to delete comment likes", err)
		return
	}
	responses.OK(c, nil, "comment deleted")
}

func (h *Handler) loadOwnedComment(ctx context.Context, c *gin.Context, commentID, callerID primitive.ObjectID) (models.Comment, bool) {
	var comment models.Comment
	if err := h.db.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "comment not found")
		} else {
			h.internalError(c, "failed to fetch comment", err)
		}
		return models.Comment{}, false
	}
	if comment.Owner != callerID {
		responses.Error(c, http.StatusForbidden, "only the owner may modify this comment")
		return models.Comment{}, false
	}
	return comment, true
}
