package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/middleware"
	"github.com/bgmanu2426/playnex-backend/pkg/models"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

const refreshTokenCookie = "refreshToken"

type registerRequest struct {
	FullName string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=30,alphanum"`
	Password string `validate:"required,min=8"`
}

// Register creates an account from multipart form data. The avatar file
// is required, the cover image optional; both go straight to the media
// host.
func (h *Handler) Register(c *gin.Context) {
	req := registerRequest{
		FullName: strings.TrimSpace(c.PostForm("fullName")),
		Email:    strings.ToLower(strings.TrimSpace(c.PostForm("email"))),
		Username: strings.ToLower(strings.TrimSpace(c.PostForm("username"))),
		Password: c.PostForm("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid registration details: "+err.Error())
		return
	}

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "avatar file is required")
		return
	}

	ctx := c.Request.Context()
	count, err := h.db.Users.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"username": req.Username},
		{"email": req.Email},
	}})
	if err != nil {
		h.internalError(c, "failed to check existing users", err)
		return
	}
	if count > 0 {
		responses.Error(c, http.StatusConflict, "username or email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(c, "failed to create account", err)
		return
	}

	avatarURL, err := h.uploadFormFile(ctx, avatarFile)
	if err != nil {
		h.internalError(c, "failed to upload avatar", err)
		return
	}

	var coverURL string
	if coverFile, err := c.FormFile("coverImage"); err == nil {
		if coverURL, err = h.uploadFormFile(ctx, coverFile); err != nil {
			h.discardUploads(ctx, avatarURL)
			h.internalError(c, "failed to upload cover image", err)
			return
		}
	}

	now := time.Now().UTC()
	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	result, err := h.db.Users.InsertOne(ctx, user)
	if err != nil {
		h.discardUploads(ctx, avatarURL, coverURL)
		if mongo.IsDuplicateKeyError(err) {
			responses.Error(c, http.StatusConflict, "username or email already registered")
			return
		}
		h.internalError(c, "failed to create account", err)
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	h.log.Info("user registered", zap.String("username", user.Username))
	responses.Created(c, user, "account created")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	User   models.User    `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// Login accepts username or email plus password and hands back the
// token pair, also set as cookies.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "username or email and password are required")
		return
	}
	if req.Username == "" && req.Email == "" {
		responses.Error(c, http.StatusBadRequest, "username or email and password are required")
		return
	}

	ctx := c.Request.Context()
	var user models.User
	err := h.db.Users.FindOne(ctx, bson.M{"$or": []bson.M{
		{"username": strings.ToLower(req.Username)},
		{"email": strings.ToLower(req.Email)},
	}}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.internalError(c, "failed to log in", err)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		responses.Error(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.tokens.GeneratePair(user.ID.Hex(), user.Username)
	if err != nil {
		h.internalError(c, "failed to issue tokens", err)
		return
	}

	if _, err := h.db.Users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"refreshToken": pair.RefreshToken,
		"updatedAt":    time.Now().UTC(),
	}}); err != nil {
		h.internalError(c, "failed to issue tokens", err)
		return
	}

	h.setAuthCookies(c, pair)
	responses.OK(c, loginResponse{User: user, Tokens: pair}, "logged in")
}

// Logout invalidates the stored refresh token and clears both cookies.
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if _, err := h.db.Users.UpdateByID(c.Request.Context(), userID, bson.M{
		"$unset": bson.M{"refreshToken": ""},
	}); err != nil {
		h.internalError(c, "failed to log out", err)
		return
	}
	h.clearAuthCookies(c)
	responses.OK(c, nil, "logged out")
}

// RefreshToken rotates the token pair. The presented refresh token must
// match the one stored at login; a mismatch means it was already rotated
// or revoked.
func (h *Handler) RefreshToken(c *gin.Context) {
	presented, _ := c.Cookie(refreshTokenCookie)
	if presented == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			presented = body.RefreshToken
		}
	}
	if presented == "" {
		responses.Error(c, http.StatusUnauthorized, "refresh token required")
		return
	}

	claims, err := h.tokens.ValidateRefreshToken(presented)
	if err != nil {
		responses.Error(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		responses.Error(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.db.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		responses.Error(c, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	if user.RefreshToken == "" || user.RefreshToken != presented {
		responses.Error(c, http.StatusUnauthorized, "refresh token revoked")
		return
	}

	pair, err := h.tokens.GeneratePair(user.ID.Hex(), user.Username)
	if err != nil {
		h.internalError(c, "failed to issue tokens", err)
		return
	}
	if _, err := h.db.Users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"refreshToken": pair.RefreshToken,
		"updatedAt":    time.Now().UTC(),
	}}); err != nil {
		h.internalError(c, "failed to issue tokens", err)
		return
	}

	h.setAuthCookies(c, pair)
	responses.OK(c, pair, "tokens refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "old and new passwords are required (new minimum 8 characters)")
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.db.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		h.internalError(c, "failed to change password", err)
		return
	}
	if !auth.CheckPassword(user.Password, req.OldPassword) {
		responses.Error(c, http.StatusUnauthorized, "old password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.internalError(c, "failed to change password", err)
		return
	}
	if _, err := h.db.Users.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"password":  hash,
		"updatedAt": time.Now().UTC(),
	}}); err != nil {
		h.internalError(c, "failed to change password", err)
		return
	}
	responses.OK(c, nil, "password changed")
}

func (h *Handler) CurrentUser(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var user models.User
	if err := h.db.Users.FindOne(c.Request.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(c, "failed to fetch user", err)
		return
	}
	responses.OK(c, user, "current user")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount patches fullName and/or email.
func (h *Handler) UpdateAccount(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if name := strings.TrimSpace(req.FullName); name != "" {
		set["fullName"] = name
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		if err := h.validate.Var(email, "email"); err != nil {
			responses.Error(c, http.StatusBadRequest, "invalid email address")
			return
		}
		set["email"] = email
	}
	if len(set) == 1 {
		responses.Error(c, http.StatusBadRequest, "nothing to update")
		return
	}

	var user models.User
	err := h.db.Users.FindOneAndUpdate(
		c.Request.Context(),
		bson.M{"_id": userID},
		bson.M{"$set": set},
		findOneAndUpdateAfter(),
	).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			responses.Error(c, http.StatusConflict, "email already in use")
			return
		}
		h.internalError(c, "failed to update account", err)
		return
	}
	responses.OK(c, user, "account updated")
}

// UpdateAvatar replaces the avatar image and deletes the previous object.
func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar")
}

// UpdateCoverImage replaces the cover image and deletes the previous
// object.
func (h *Handler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage")
}

func (h *Handler) updateImage(c *gin.Context, field string) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile(field)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, field+" file is required")
		return
	}

	ctx := c.Request.Context()
	newURL, err := h.uploadFormFile(ctx, fileHeader)
	if err != nil {
		h.internalError(c, "failed to upload "+field, err)
		return
	}

	var previous models.User
	err = h.db.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{field: newURL, "updatedAt": time.Now().UTC()}},
	).Decode(&previous)
	if err != nil {
		h.discardUploads(ctx, newURL)
		if errors.Is(err, mongo.ErrNoDocuments) {
			responses.Error(c, http.StatusNotFound, "user not found")
			return
		}
		h.internalError(c, "failed to update "+field, err)
		return
	}

	oldURL := previous.Avatar
	if field == "coverImage" {
		oldURL = previous.CoverImage
	}
	if oldURL != "" {
		if err := h.media.Delete(ctx, oldURL); err != nil {
			h.log.Warn("failed to delete replaced media object",
				zap.String("url", oldURL), zap.Error(err))
		}
	}

	responses.OK(c, gin.H{field: newURL}, field+" updated")
}

// ChannelProfile resolves a channel page in one aggregation: subscriber
// counts plus whether the caller subscribes to it.
func (h *Handler) ChannelProfile(c *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		responses.Error(c, http.StatusBadRequest, "username is required")
		return
	}
	callerID, ok := requireUserID(c)
	if !ok {
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":          bson.M{"$size": "$subscribers"},
			"channelsSubscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":              bson.M{"$in": bson.A{callerID, "$subscribers.subscriber"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":                  1,
			"email":                     1,
			"fullName":                  1,
			"avatar":                    1,
			"coverImage":                1,
			"subscribersCount":          1,
			"channelsSubscribedToCount": 1,
			"isSubscribed":              1,
		}}},
	}

	ctx := c.Request.Context()
	cursor, err := h.db.Users.Aggregate(ctx, pipeline)
	if err != nil {
		h.internalError(c, "failed to fetch channel", err)
		return
	}
	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		h.internalError(c, "failed to fetch channel", err)
		return
	}
	if len(profiles) == 0 {
		responses.Error(c, http.StatusNotFound, "channel not found")
		return
	}
	responses.OK(c, profiles[0], "channel profile")
}

// WatchHistory returns the caller's history resolved to video documents
// with owner details, newest first.
func (h *Handler) WatchHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var user models.User
	if err := h.db.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		h.internalError(c, "failed to fetch watch history", err)
		return
	}
	if len(user.WatchHistory) == 0 {
		responses.OK(c, []models.VideoWithOwner{}, "watch history")
		return
	}

	videos, err := h.videosWithOwner(ctx, bson.M{"_id": bson.M{"$in": user.WatchHistory}})
	if err != nil {
		h.internalError(c, "failed to fetch watch history", err)
		return
	}

	// $in does not preserve order; restore the stored newest-first order.
	byID := make(map[primitive.ObjectID]models.VideoWithOwner, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}
	ordered := make([]models.VideoWithOwner, 0, len(videos))
	for _, id := range user.WatchHistory {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	responses.OK(c, ordered, "watch history")
}

func (h *Handler) uploadFormFile(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.media.Upload(ctx, f, fh.Filename)
}

func (h *Handler) setAuthCookies(c *gin.Context, pair auth.TokenPair) {
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken,
		int(h.tokens.AccessTTL().Seconds()), "/", "", false, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken,
		int(h.tokens.RefreshTTL().Seconds()), "/", "", false, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", false, true)
}
