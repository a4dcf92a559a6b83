package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/bgmanu2426/playnex-backend/cmd/config"
	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/database"
	"github.com/bgmanu2426/playnex-backend/pkg/handlers"
	"github.com/bgmanu2426/playnex-backend/pkg/media"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close(context.Background())

	tokens := auth.NewTokenManager(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry,
	)
	store := media.NewStore(cfg.AWSRegion, cfg.S3Bucket)
	h := handlers.New(db, logger, tokens, store)

	srv, err := handlers.NewServer(cfg, logger, h, tokens)
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}
	if err := srv.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
