package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/cmd/config"
	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/database"
)

// fakeMediaStore records uploads and deletes so tests can assert that
// failed writes clean up the objects they put in the bucket.
type fakeMediaStore struct {
	uploaded []string
	deleted  []string
}

func (f *fakeMediaStore) Upload(_ context.Context, _ io.Reader, filename string) (string, error) {
	url := fmt.Sprintf("https://clips.s3.us-east-1.amazonaws.com/%d/%s", len(f.uploaded), filename)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, fileURL string) error {
	f.deleted = append(f.deleted, fileURL)
	return nil
}

// newMockedServer wires the real router against mtest's mocked mongo
// deployment, so handlers run their actual queries and the tests script
// the server's replies.
func newMockedServer(mt *mtest.T, media *fakeMediaStore, userID primitive.ObjectID) (*Server, string) {
	mt.Helper()
	gin.SetMode(gin.TestMode)

	db := &database.DB{
		Users:         mt.DB.Collection("users"),
		Videos:        mt.DB.Collection("videos"),
		Comments:      mt.DB.Collection("comments"),
		Tweets:        mt.DB.Collection("tweets"),
		Likes:         mt.DB.Collection("likes"),
		Playlists:     mt.DB.Collection("playlists"),
		Subscriptions: mt.DB.Collection("subscriptions"),
	}
	tokens := auth.NewTokenManager("access", "refresh", time.Minute, time.Hour)
	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:3000"},
		RateLimit:   "1000-M",
	}
	srv, err := NewServer(cfg, zap.NewNop(), New(db, zap.NewNop(), tokens, media), tokens)
	require.NoError(mt, err)

	token, err := tokens.GenerateAccessToken(userID.Hex(), "alice")
	require.NoError(mt, err)
	return srv, token
}

// countResponse scripts the aggregate reply CountDocuments expects.
func countResponse(n int64) bson.D {
	return mtest.CreateCursorResponse(0, "playnex.any", mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestToggleVideoLikeAddsWhenMissing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("add", func(mt *mtest.T) {
		srv, token := newMockedServer(mt, &fakeMediaStore{}, primitive.NewObjectID())
		mt.AddMockResponses(
			countResponse(1),              // video exists
			mtest.CreateSuccessResponse(), // findAndModify without a value: no prior like
			mtest.CreateSuccessResponse(), // insert
		)

		w := doRequest(srv, http.MethodPost, "/api/v1/likes/toggle/v/"+primitive.NewObjectID().Hex(), "", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"liked":true`)
	})
}

func TestToggleSubscriptionRemovesExisting(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("remove", func(mt *mtest.T) {
		callerID := primitive.NewObjectID()
		channelID := primitive.NewObjectID()
		srv, token := newMockedServer(mt, &fakeMediaStore{}, callerID)
		mt.AddMockResponses(
			countResponse(1), // channel exists
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "subscriber", Value: callerID},
				{Key: "channel", Value: channelID},
				{Key: "createdAt", Value: time.Now().UTC()},
			}}),
		)

		w := doRequest(srv, http.MethodPost, "/api/v1/subscriptions/c/"+channelID.Hex(), "", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"subscribed":false`)
	})
}

func TestRegisterDuplicateDiscardsUpload(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate", func(mt *mtest.T) {
		media := &fakeMediaStore{}
		srv, _ := newMockedServer(mt, media, primitive.NewObjectID())
		mt.AddMockResponses(
			countResponse(0), // pre-insert check races past
			mtest.CreateWriteErrorsResponse(mtest.WriteError{
				Index: 0, Code: 11000, Message: "duplicate key error",
			}),
		)

		body, contentType := multipartForm(t, map[string]string{
			"fullName": "Alice Example",
			"email":    "alice@example.com",
			"username": "alice",
			"password": "password123",
		}, map[string]string{"avatar": "avatar.png"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		require.Len(t, media.uploaded, 1)
		assert.Equal(t, media.uploaded, media.deleted)
	})
}

func TestPublishVideoInsertFailureDiscardsUploads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert fails", func(mt *mtest.T) {
		media := &fakeMediaStore{}
		srv, token := newMockedServer(mt, media, primitive.NewObjectID())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 8, Name: "UnknownError", Message: "insert failed",
		}))

		body, contentType := multipartForm(t, map[string]string{
			"title": "my video",
		}, map[string]string{"videoFile": "movie.mp4", "thumbnail": "thumb.png"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		require.Len(t, media.uploaded, 2)
		assert.ElementsMatch(t, media.uploaded, media.deleted)
	})
}

func TestDeleteVideoByNonOwnerForbidden(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("forbidden", func(mt *mtest.T) {
		media := &fakeMediaStore{}
		srv, token := newMockedServer(mt, media, primitive.NewObjectID())

		videoID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "playnex.videos", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: videoID},
			{Key: "title", Value: "not yours"},
			{Key: "owner", Value: primitive.NewObjectID()},
		}))

		w := doRequest(srv, http.MethodDelete, "/api/v1/videos/"+videoID.Hex(), "", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, media.deleted)
	})
}

// multipartForm builds a multipart body from plain fields and named file
// parts with throwaway content.
func multipartForm(t *testing.T, fields, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
