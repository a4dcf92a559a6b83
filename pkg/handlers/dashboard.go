package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

type channelStats struct {
	TotalVideos      int64 `bson:"totalVideos" json:"totalVideos"`
	TotalViews       int64 `bson:"totalViews" json:"totalViews"`
	TotalLikes       int64 `bson:"totalLikes" json:"totalLikes"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// ChannelStats aggregates the caller's channel numbers: video, view and
// like totals in one pipeline over videos, plus a subscriber count.
func (h *Handler) ChannelStats(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": callerID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "likes",
			"localField":   "_id",
			"foreignField": "video",
			"as":           "likes",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalVideos": bson.M{"$sum": 1},
			"totalViews":  bson.M{"$sum": "$views"},
			"totalLikes":  bson.M{"$sum": bson.M{"$size": "$likes"}},
		}}},
	}

	ctx := c.Request.Context()
	cursor, err := h.db.Videos.Aggregate(ctx, pipeline)
	if err != nil {
		h.internalError(c, "failed to compute channel stats", err)
		return
	}
	var results []channelStats
	if err := cursor.All(ctx, &results); err != nil {
		h.internalError(c, "failed to compute channel stats", err)
		return
	}

	stats := channelStats{}
	if len(results) > 0 {
		stats = results[0]
	}
	stats.TotalSubscribers, err = h.db.Subscriptions.CountDocuments(ctx, bson.M{"channel": callerID})
	if err != nil {
		h.internalError(c, "failed to compute channel stats", err)
		return
	}
	responses.OK(c, stats, "channel stats")
}

// ChannelVideos lists every video the caller owns, unpublished included.
func (h *Handler) ChannelVideos(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	page, limit := paginationParams(c)

	ctx := c.Request.Context()
	filter := bson.M{"owner": callerID}
	total, err := h.db.Videos.CountDocuments(ctx, filter)
	if err != nil {
		h.internalError(c, "failed to list channel videos", err)
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := h.db.Videos.Find(ctx, filter, opts)
	if err != nil {
		h.internalError(c, "failed to list channel videos", err)
		return
	}
	videos := []models.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		h.internalError(c, "failed to list channel videos", err)
		return
	}
	responses.Paginated(c, videos, responses.NewPagination(page, limit, total), "channel videos")
}
