package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

// sortableVideoFields is the whitelist for the sortBy query param.
var sortableVideoFields = map[string]string{
	"createdAt": "createdAt",
	"views":     "views",
	"duration":  "duration",
}

// ListVideos pages through published videos with optional text query,
// owner filter and sorting. Owners querying their own uploads also see
// unpublished ones.
func (h *Handler) ListVideos(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, limit := paginationParams(c)

	filter := bson.M{"isPublished": true}
	if raw := c.Query("userId"); raw != "" {
		ownerID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, "invalid userId")
			return
		}
		filter["owner"] = ownerID
		if ownerID == callerID {
			delete(filter, "isPublished")
		}
	}
	if query := strings.TrimSpace(c.Query("query")); query != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": query, "$options": "i"}},
			{"description": bson.M{"$regex": query, "$options": "i"}},
		}
	}

	sortField, ok := sortableVideoFields[c.DefaultQuery("sortBy", "createdAt")]
	if !ok {
		responses.Error(c, http.StatusBadRequest, "sortBy must be one of createdAt, views, duration")
		return
	}
	sortOrder := -1
	if c.DefaultQuery("sortType", "desc") == "asc" {
		sortOrder = 1
	}

	ctx := c.Request.Context()
	total, err := h.db.Videos.CountDocuments(ctx, filter)
	if err != nil {
		h.internalError(c, "failed to list videos", err)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := h.db.Videos.Find(ctx, filter, opts)
	if err != nil {
		h.internalError(c, "failed to list videos", err)
		return
	}
	videos := []models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		h.internalError(c, "failed to list videos", err)
		return
	}

	responses.Paginated(c, videos, responses.NewPagination(page, limit, total), "videos")
}

type publishVideoRequest struct {
	Title       string  `validate:"required,min=1,max=200"`
	Description string  `validate:"max=2000"`
	Duration    float64 `validate:"gte=0"`
}

// PublishVideo uploads the video file and thumbnail and creates the
// document, published immediately.
func (h *Handler) PublishVideo(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	req := publishVideoRequest{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	if raw := c.PostForm("duration"); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil || duration < 0 {
			responses.Error(c, http.StatusBadRequest, "duration must be a number of seconds")
			return
		}
		req.Duration = duration
	}
	if err := h.validate.Struct(req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid video details: "+err.Error())
		return
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "videoFile is required")
		return
	}
	thumbFile, err := c.FormFile("thumbnail")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "thumbnail is required")
		return
	}

	ctx := c.Request.Context()
	videoURL, err := h.uploadFormFile(ctx, videoFile)
	if err != nil {
		h.internalError(c, "failed to upload video file", err)
		return
	}
	thumbURL, err := h.uploadFormFile(ctx, thumbFile)
	if err != nil {
		h.discardUploads(ctx, videoURL)
		h.internalError(c, "failed to upload thumbnail", err)
		return
	}

	now := time.Now().UTC()
	video := models.Video{
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		IsPublished: true,
		Owner:       userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	result, err := h.db.Videos.InsertOne(ctx, video)
	if err != nil {
		h.discardUploads(ctx, videoURL, thumbURL)
		h.internalError(c, "failed to save video", err)
		return
	}
	video.ID = result.InsertedID.(primitive.ObjectID)

	h.log.Info("video published",
		zap.String("video", video.ID.Hex()), zap.String("owner", userID.Hex()))
	responses.Created(c, video, "video published")
}

// GetVideo returns one video with its owner resolved, bumps the view
// counter and records the view in the caller's watch history.
func (h *Handler) GetVideo(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.db.Videos.UpdateByID(ctx, videoID, bson.M{"$inc": bson.M{"views": 1}}); err != nil {
		h.internalError(c, "failed to fetch video", err)
		return
	}

	videos, err := h.videosWithOwner(ctx, bson.M{"_id": videoID})
	if err != nil {
		h.internalError(c, "failed to fetch video", err)
		return
	}
	if len(videos) == 0 {
		responses.Error(c, http.StatusNotFound, "video not found")
		return
	}

	if err := h.recordWatch(ctx, callerID, videoID); err != nil {
		// History is best effort; the video itself was fetched fine.
		h.log.Warn("failed to record watch history",
			zap.String("user", callerID.Hex()), zap.Error(err))
	}

	responses.OK(c, videos[0], "video")
}

type updateVideoRequest struct {
	Title       string `validate:"omitempty,min=1,max=200"`
	Description string `validate:"max=2000"`
}

// UpdateVideo patches title/description and optionally replaces the
// thumbnail. Owner only.
func (h *Handler) UpdateVideo(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	video, ok := h.loadOwnedVideo(ctx, c, videoID, callerID)
	if !ok {
		return
	}

	req := updateVideoRequest{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: strings.TrimSpace(c.PostForm("description")),
	}
	if err := h.validate.Struct(req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid video details: "+err.Error())
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Description != "" {
		set["description"] = req.Description
	}

	var oldThumbnail, newThumbnail string
	if thumbFile, err := c.FormFile("thumbnail"); err == nil {
		newThumbnail, err = h.uploadFormFile(ctx, thumbFile)
		if err != nil {
			h.internalError(c, "failed to upload thumbnail", err)
			return
		}
		set["thumbnail"] = newThumbnail
		oldThumbnail = video.Thumbnail
	}
	if len(set) == 1 {
		responses.Error(c, http.StatusBadRequest, "nothing to update")
		return
	}

	var updated models.Video
	err := h.db.Videos.FindOneAndUpdate(
		ctx,
		bson.M{"_id": videoID},
		bson.M{"$set": set},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.discardUploads(ctx, newThumbnail)
		h.internalError(c, "failed to update video", err)
		return
	}

	if oldThumbnail != "" {
		if err := h.media.Delete(ctx, oldThumbnail); err != nil {
			h.log.Warn("failed to delete replaced thumbnail",
				zap.String("url", oldThumbnail), zap.Error(err))
		}
	}
	responses.OK(c, updated, "video updated")
}

// DeleteVideo removes the document, its media objects, and the comments
// and likes that reference it. Owner only.
func (h *Handler) DeleteVideo(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	video, ok := h.loadOwnedVideo(ctx, c, videoID, callerID)
	if !ok {
		return
	}

	if _, err := h.db.Videos.DeleteOne(ctx, bson.M{"_id": videoID}); err != nil {
		h.internalError(c, "failed to delete video", err)
		return
	}
	if _, err := h.db.Comments.DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		h.internalError(c, "failed to delete video comments", err)
		return
	}
	if _, err := h.db.Likes.DeleteMany(ctx, bson.M{"video": videoID}); err != nil {
		h.internalError(c, "failed to delete video likes", err)
		return
	}

	for _, fileURL := range []string{video.VideoFile, video.Thumbnail} {
		if fileURL == "" {
			continue
		}
		if err := h.media.Delete(ctx, fileURL); err != nil {
			h.log.Warn("failed to delete media object",
				zap.String("url", fileURL), zap.Error(err))
		}
	}

	h.log.Info("video deleted",
		zap.String("video", videoID.Hex()), zap.String("owner", callerID.Hex()))
	responses.OK(c, nil, "video deleted")
}

// TogglePublish flips the publish flag. Owner only.
func (h *Handler) TogglePublish(c *gin.Context) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	video, ok := h.loadOwnedVideo(ctx, c, videoID, callerID)
	if !ok {
		return
	}

	var updated models.Video
	err := h.db.Videos.FindOneAndUpdate(
		ctx,
		bson.M{"_id": videoID},
		bson.M{"$set": bson.M{
			"isPublished": !video.IsPublished,
			"updatedAt":   time.Now().UTC(),
		}},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.internalError(c, "failed to toggle publish state", err)
		return
	}
	responses.OK(c, updated, "publish state toggled")
}

// loadOwnedVideo fetches a video and enforces ownership, answering 404
// or 403 itself.
func (h *Handler) loadOwnedVideo(ctx context.Context, c *gin.Context, videoID, callerID primitive.ObjectID) (models.Video, bool) {
	var video models.Video
	if err := h.db.Videos.FindOne(ctx, bson.M{"_id": videoID}).Decode(&video); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "video not found")
		} else {
			h.internalError(c, "failed to fetch video", err)
		}
		return models.Video{}, false
	}
	if video.Owner != callerID {
		responses.Error(c, http.StatusForbidden, "only the owner may modify this video")
		return models.Video{}, false
	}
	return video, true
}

// videosWithOwner runs the shared match + owner $lookup pipeline.
func (h *Handler) videosWithOwner(ctx context.Context, match bson.M) ([]models.VideoWithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
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
		// ownerDetails decodes into PublicUser, which drops credentials.
	}
	cursor, err := h.db.Videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var videos []models.VideoWithOwner
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// recordWatch prepends the video to the caller's watch history, deduped
// and capped.
func (h *Handler) recordWatch(ctx context.Context, userID, videoID primitive.ObjectID) error {
	var user models.User
	if err := h.db.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return err
	}
	history := trimWatchHistory(user.WatchHistory, videoID, models.WatchHistoryLimit)
	_, err := h.db.Users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{"watchHistory": history}})
	return err
}
