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

// ToggleSubscription subscribes the caller to a channel, or unsubscribes
// when a subscription already exists. Subscribing to yourself is
// rejected.
func (h *Handler) ToggleSubscription(c *gin.Context) {
	channelID, ok := objectIDParam(c, "channelId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	if channelID == callerID {
		responses.Error(c, http.StatusBadRequest, "cannot subscribe to your own channel")
		return
	}

	ctx := c.Request.Context()
	count, err := h.db.Users.CountDocuments(ctx, bson.M{"_id": channelID})
	if err != nil {
		h.internalError(c, "failed to toggle subscription", err)
		return
	}
	if count == 0 {
		responses.Error(c, http.StatusNotFound, "channel not found")
		return
	}

	filter := bson.M{"subscriber": callerID, "channel": channelID}
	err = h.db.Subscriptions.FindOneAndDelete(ctx, filter).Err()
	switch {
	case err == nil:
		responses.OK(c, gin.H{"subscribed": false}, "unsubscribed")
	case errors.Is(err, mongo.ErrNoDocuments):
		sub := models.Subscription{
			Subscriber: callerID,
			Channel:    channelID,
			CreatedAt:  time.Now().UTC(),
		}
		if _, err := h.db.Subscriptions.InsertOne(ctx, sub); err != nil {
			h.internalError(c, "failed to toggle subscription", err)
			return
		}
		responses.OK(c, gin.H{"subscribed": true}, "subscribed")
	default:
		h.internalError(c, "failed to toggle subscription", err)
	}
}

// ChannelSubscribers lists the users subscribed to a channel.
func (h *Handler) ChannelSubscribers(c *gin.Context) {
	channelID, ok := objectIDParam(c, "channelId")
	if !ok {
		return
	}
	h.listSubscriptionUsers(c, bson.M{"channel": channelID}, "subscriber", "subscribers")
}

// SubscribedChannels lists the channels a user subscribes to.
func (h *Handler) SubscribedChannels(c *gin.Context) {
	subscriberID, ok := objectIDParam(c, "subscriberId")
	if !ok {
		return
	}
	h.listSubscriptionUsers(c, bson.M{"subscriber": subscriberID}, "channel", "subscribed channels")
}

// listSubscriptionUsers resolves one side of the subscription pair to
// public user documents.
func (h *Handler) listSubscriptionUsers(c *gin.Context, match bson.M, side, message string) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   side,
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$user"}}},
	}

	ctx := c.Request.Context()
	cursor, err := h.db.Subscriptions.Aggregate(ctx, pipeline)
	if err != nil {
		h.internalError(c, "failed to list "+message, err)
		return
	}
	users := []models.PublicUser{}
	if err := cursor.All(ctx, &users); err != nil {
		h.internalError(c, "failed to list "+message, err)
		return
	}
	responses.OK(c, users, message)
}
