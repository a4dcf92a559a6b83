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
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

type tweetRequest struct {
	Content string `json:"content" binding:"required,min=1,max=280"`
}

func (h *Handler) CreateTweet(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "tweet content is required (max 280 characters)")
		return
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		Content:   strings.TrimSpace(req.Content),
		Owner:     callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	result, err := h.db.Tweets.InsertOne(c.Request.Context(), tweet)
	if err != nil {
		h.internalError(c, "failed to create tweet", err)
		return
	}
	tweet.ID = result.InsertedID.(primitive.ObjectID)
	responses.Created(c, tweet, "tweet created")
}

// ListUserTweets returns a user's tweets, newest first.
func (h *Handler) ListUserTweets(c *gin.Context) {
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cursor, err := h.db.Tweets.Find(ctx, bson.M{"owner": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		h.internalError(c, "failed to list tweets", err)
		return
	}
	tweets := []models.Tweet{}
	if err := cursor.All(ctx, &tweets); err != nil {
		h.internalError(c, "failed to list tweets", err)
		return
	}
	responses.OK(c, tweets, "tweets")
}

func (h *Handler) UpdateTweet(c *gin.Context) {
	tweetID, ok := objectIDParam(c, "tweetId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "tweet content is required (max 280 characters)")
		return
	}

	ctx := c.Request.Context()
	if !h.checkTweetOwner(ctx, c, tweetID, callerID) {
		return
	}

	var updated models.Tweet
	err := h.db.Tweets.FindOneAndUpdate(
		ctx,
		bson.M{"_id": tweetID},
		bson.M{"$set": bson.M{
			"content":   strings.TrimSpace(req.Content),
			"updatedAt": time.Now().UTC(),
		}},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.internalError(c, "failed to update tweet", err)
		return
	}
	responses.OK(c, updated, "tweet updated")
}

// DeleteTweet removes a tweet and its likes. Owner only.
func (h *Handler) DeleteTweet(c *gin.Context) {
	tweetID, ok := objectIDParam(c, "tweetId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !h.checkTweetOwner(ctx, c, tweetID, callerID) {
		return
	}

	if _, err := h.db.Tweets.DeleteOne(ctx, bson.M{"_id": tweetID}); err != nil {
		h.internalError(c, "failed to delete tweet", err)
		return
	}
	if _, err := h.db.Likes.DeleteMany(ctx, bson.M{"tweet": tweetID}); err != nil {
		h.internalError(c, "failed to delete tweet likes", err)
		return
	}
	responses.OK(c, nil, "tweet deleted")
}

func (h *Handler) checkTweetOwner(ctx context.Context, c *gin.Context, tweetID, callerID primitive.ObjectID) bool {
	var tweet models.Tweet
	if err := h.db.Tweets.FindOne(ctx, bson.M{"_id": tweetID}).Decode(&tweet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "tweet not found")
		} else {
			h.internalError(c, "failed to fetch tweet", err)
		}
		return false
	}
	if tweet.Owner != callerID {
		responses.Error(c, http.StatusForbidden, "only the owner may modify this tweet")
		return false
	}
	return true
}
