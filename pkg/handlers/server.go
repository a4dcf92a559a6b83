package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/cmd/config"
	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/middleware"
)

// Server owns the router and the listen loop.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(cfg *config.Config, logger *zap.Logger, h *Handler, tokens *auth.TokenManager) (*Server, error) {
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	rateLimiter, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	router.Use(rateLimiter)

	registerRoutes(router, h, tokens)
	return &Server{router: router, logger: logger}, nil
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.router.Run(addr)
}

func registerRoutes(router *gin.Engine, h *Handler, tokens *auth.TokenManager) {
	v1 := router.Group("/api/v1")
	authed := middleware.RequireAuth(tokens)

	v1.GET("/healthcheck", h.Healthcheck)

	users := v1.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh-token", h.RefreshToken)
		users.POST("/logout", authed, h.Logout)
		users.POST("/change-password", authed, h.ChangePassword)
		users.GET("/current-user", authed, h.CurrentUser)
		users.PATCH("/update-account", authed, h.UpdateAccount)
		users.PATCH("/avatar", authed, h.UpdateAvatar)
		users.PATCH("/cover-image", authed, h.UpdateCoverImage)
		users.GET("/c/:username", authed, h.ChannelProfile)
		users.GET("/history", authed, h.WatchHistory)
	}

	videos := v1.Group("/videos", authed)
	{
		videos.GET("", h.ListVideos)
		videos.POST("", h.PublishVideo)
		videos.GET("/:videoId", h.GetVideo)
		videos.PATCH("/:videoId", h.UpdateVideo)
		videos.DELETE("/:videoId", h.DeleteVideo)
		videos.PATCH("/toggle/publish/:videoId", h.TogglePublish)
	}

	comments := v1.Group("/comments", authed)
	{
		comments.GET("/:videoId", h.ListComments)
		comments.POST("/:videoId", h.AddComment)
		comments.PATCH("/c/:commentId", h.UpdateComment)
		comments.DELETE("/c/:commentId", h.DeleteComment)
	}

	likes := v1.Group("/likes", authed)
	{
		likes.POST("/toggle/v/:videoId", h.ToggleVideoLike)
		likes.POST("/toggle/c/:commentId", h.ToggleCommentLike)
		likes.POST("/toggle/t/:tweetId", h.ToggleTweetLike)
		likes.GET("/videos", h.LikedVideos)
	}

	tweets := v1.Group("/tweets", authed)
	{
		tweets.POST("", h.CreateTweet)
		tweets.GET("/user/:userId", h.ListUserTweets)
		tweets.PATCH("/:tweetId", h.UpdateTweet)
		tweets.DELETE("/:tweetId", h.DeleteTweet)
	}

	subscriptions := v1.Group("/subscriptions", authed)
	{
		subscriptions.POST("/c/:channelId", h.ToggleSubscription)
		subscriptions.GET("/c/:channelId", h.ChannelSubscribers)
		subscriptions.GET("/u/:subscriberId", h.SubscribedChannels)
	}

	playlists := v1.Group("/playlist", authed)
	{
		playlists.POST("", h.CreatePlaylist)
		playlists.GET("/:playlistId", h.GetPlaylist)
		playlists.PATCH("/:playlistId", h.UpdatePlaylist)
		playlists.DELETE("/:playlistId", h.DeletePlaylist)
		playlists.PATCH("/add/:videoId/:playlistId", h.AddVideoToPlaylist)
		playlists.PATCH("/remove/:videoId/:playlistId", h.RemoveVideoFromPlaylist)
		playlists.GET("/user/:userId", h.ListUserPlaylists)
	}

	dashboard := v1.Group("/dashboard", authed)
	{
		dashboard.GET("/stats", h.ChannelStats)
		dashboard.GET("/videos", h.ChannelVideos)
	}
}
