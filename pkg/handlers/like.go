package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// ToggleVideoLike likes a video, or removes the like when it already
// exists.
func (h *Handler) ToggleVideoLike(c *gin.Context) {
	h.toggleLike(c, "videoId", "video", h.db.Videos, "video not found")
}

func (h *Handler) ToggleCommentLike(c *gin.Context) {
	h.toggleLike(c, "commentId", "comment", h.db.Comments, "comment not found")
}

func (h *Handler) ToggleTweetLike(c *gin.Context) {
	h.toggleLike(c, "tweetId", "tweet", h.db.Tweets, "tweet not found")
}

func (h *Handler) toggleLike(c *gin.Context, param, field string, target *mongo.Collection, missing string) {
	targetID, ok := objectIDParam(c, param)
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	count, err := target.CountDocuments(ctx, bson.M{"_id": targetID})
	if err != nil {
		h.internalError(c, "failed to toggle like", err)
		return
	}
	if count == 0 {
		responses.Error(c, http.StatusNotFound, missing)
		return
	}

	filter := bson.M{field: targetID, "likedBy": callerID}
	err = h.db.Likes.FindOneAndDelete(ctx, filter).Err()
	switch {
	case err == nil:
		responses.OK(c, gin.H{"liked": false}, "like removed")
	case errors.Is(err, mongo.ErrNoDocuments):
		like := bson.M{
			field:       targetID,
			"likedBy":   callerID,
			"createdAt": time.Now().UTC(),
		}
		if _, err := h.db.Likes.InsertOne(ctx, like); err != nil {
			h.internalError(c, "failed to toggle like", err)
			return
		}
		responses.OK(c, gin.H{"liked": true}, "like added")
	default:
		h.internalError(c, "failed to toggle like", err)
	}
}

// LikedVideos lists the caller's liked videos with owners resolved,
// most recently liked first.
func (h *Handler) LikedVideos(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"likedBy": callerID,
			"video":   bson.M{"$exists": true},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "video",
			"foreignField": "_id",
			"as":           "video",
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$video"}}},
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

	ctx := c.Request.Context()
	cursor, err := h.db.Likes.Aggregate(ctx, pipeline)
	if err != nil {
		h.internalError(c, "failed to list liked videos", err)
		return
	}
	videos := []models.VideoWithOwner{}
	if err := cursor.All(ctx, &videos); err != nil {
		h.internalError(c, "failed to list liked videos", err)
		return
	}
	responses.OK(c, videos, "liked videos")
}
