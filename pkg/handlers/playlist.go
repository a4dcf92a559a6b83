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

type playlistRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

func (h *Handler) CreatePlaylist(c *gin.Context) {
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "playlist name is required (max 100 characters)")
		return
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Owner:       callerID,
		Videos:      []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	result, err := h.db.Playlists.InsertOne(c.Request.Context(), playlist)
	if err != nil {
		h.internalError(c, "failed to create playlist", err)
		return
	}
	playlist.ID = result.InsertedID.(primitive.ObjectID)
	responses.Created(c, playlist, "playlist created")
}

// GetPlaylist returns one playlist with its video references resolved in
// stored order.
func (h *Handler) GetPlaylist(c *gin.Context) {
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var playlist models.Playlist
	if err := h.db.Playlists.FindOne(ctx, bson.M{"_id": playlistID}).Decode(&playlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "playlist not found")
			return
		}
		h.internalError(c, "failed to fetch playlist", err)
		return
	}

	resolved := models.PlaylistWithVideos{Playlist: playlist, VideoDetails: []models.Video{}}
	if len(playlist.Videos) > 0 {
		cursor, err := h.db.Videos.Find(ctx, bson.M{"_id": bson.M{"$in": playlist.Videos}})
		if err != nil {
			h.internalError(c, "failed to fetch playlist videos", err)
			return
		}
		var videos []models.Video
		if err := cursor.All(ctx, &videos); err != nil {
			h.internalError(c, "failed to fetch playlist videos", err)
			return
		}
		// Keep the playlist's own ordering.
		byID := make(map[primitive.ObjectID]models.Video, len(videos))
		for _, v := range videos {
			byID[v.ID] = v
		}
		for _, id := range playlist.Videos {
			if v, ok := byID[id]; ok {
				resolved.VideoDetails = append(resolved.VideoDetails, v)
			}
		}
	}
	responses.OK(c, resolved, "playlist")
}

// ListUserPlaylists returns a user's playlists.
func (h *Handler) ListUserPlaylists(c *gin.Context) {
	userID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cursor, err := h.db.Playlists.Find(ctx, bson.M{"owner": userID},
		options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}}))
	if err != nil {
		h.internalError(c, "failed to list playlists", err)
		return
	}
	playlists := []models.Playlist{}
	if err := cursor.All(ctx, &playlists); err != nil {
		h.internalError(c, "failed to list playlists", err)
		return
	}
	responses.OK(c, playlists, "playlists")
}

// UpdatePlaylist patches name/description. Owner only.
func (h *Handler) UpdatePlaylist(c *gin.Context) {
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		set["description"] = desc
	}
	if len(set) == 1 {
		responses.Error(c, http.StatusBadRequest, "nothing to update")
		return
	}

	ctx := c.Request.Context()
	if !h.checkPlaylistOwner(ctx, c, playlistID, callerID) {
		return
	}

	var updated models.Playlist
	err := h.db.Playlists.FindOneAndUpdate(
		ctx,
		bson.M{"_id": playlistID},
		bson.M{"$set": set},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.internalError(c, "failed to update playlist", err)
		return
	}
	responses.OK(c, updated, "playlist updated")
}

// DeletePlaylist removes a playlist. Owner only. Videos themselves are
// untouched.
func (h *Handler) DeletePlaylist(c *gin.Context) {
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !h.checkPlaylistOwner(ctx, c, playlistID, callerID) {
		return
	}
	if _, err := h.db.Playlists.DeleteOne(ctx, bson.M{"_id": playlistID}); err != nil {
		h.internalError(c, "failed to delete playlist", err)
		return
	}
	responses.OK(c, nil, "playlist deleted")
}

// AddVideoToPlaylist appends a video reference; $addToSet makes repeat
// adds idempotent.
func (h *Handler) AddVideoToPlaylist(c *gin.Context) {
	h.mutatePlaylistVideos(c, "$addToSet", "video added to playlist")
}

// RemoveVideoFromPlaylist drops a video reference.
func (h *Handler) RemoveVideoFromPlaylist(c *gin.Context) {
	h.mutatePlaylistVideos(c, "$pull", "video removed from playlist")
}

func (h *Handler) mutatePlaylistVideos(c *gin.Context, op, message string) {
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !h.checkPlaylistOwner(ctx, c, playlistID, callerID) {
		return
	}

	if op == "$addToSet" {
		count, err := h.db.Videos.CountDocuments(ctx, bson.M{"_id": videoID})
		if err != nil {
			h.internalError(c, "failed to update playlist", err)
			return
		}
		if count == 0 {
			responses.Error(c, http.StatusNotFound, "video not found")
			return
		}
	}

	var updated models.Playlist
	err := h.db.Playlists.FindOneAndUpdate(
		ctx,
		bson.M{"_id": playlistID},
		bson.M{
			op:     bson.M{"videos": videoID},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		findOneAndUpdateAfter(),
	).Decode(&updated)
	if err != nil {
		h.internalError(c, "failed to update playlist", err)
		return
	}
	responses.OK(c, updated, message)
}

func (h *Handler) checkPlaylistOwner(ctx context.Context, c *gin.Context, playlistID, callerID primitive.ObjectID) bool {
	var playlist models.Playlist
	if err := h.db.Playlists.FindOne(ctx, bson.M{"_id": playlistID}).Decode(&playlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "playlist not found")
		} else {
			h.internalError(c, "failed to fetch playlist", err)
		}
		return false
	}
	if playlist.Owner != callerID {
		responses.Error(c, http.StatusForbidden, "only the owner may modify this playlist")
		return false
	}
	return true
}
