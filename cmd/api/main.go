package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/joshua-takyi/eventful/internal/config"
	"github.com/joshua-takyi/eventful/internal/connect"
	"github.com/joshua-takyi/eventful/internal/container"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/media"
	"github.com/joshua-takyi/eventful/internal/models"
	"github.com/joshua-takyi/eventful/internal/routes"
)

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting eventful server", "environment", cfg.Environment)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	mongoClient, err := connect.MongoDBConnect(startCtx, cfg.MongoURI())
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	repo := models.MongodbNewRepo(mongoClient, cfg.MongoDBDatabase)
	if err := repo.EnsureIndexes(startCtx); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	images, err := imageStore(cfg)
	if err != nil {
		logger.Error("Failed to set up image storage", "provider", cfg.ImageProvider, "error", err)
		os.Exit(1)
	}

	tokens := helpers.NewTokens(cfg.JWTSecret, cfg.SessionTTL)
	if cfg.JWKSURL != "" {
		if err := tokens.WithJWKS(context.Background(), cfg.JWKSURL); err != nil {
			logger.Error("Failed to load JWKS", "url", cfg.JWKSURL, "error", err)
			os.Exit(1)
		}
	}
	defer tokens.Close()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connect.RedisConnect(startCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, counting views in MongoDB", "error", err)
			redisClient = nil
		}
	}

	appContainer := container.NewContainer(
		logger,
		container.Repos{Events: repo, Users: repo},
		images,
		tokens,
		redisClient,
		cfg.IsProduction(),
	)

	router := routes.SetupRoutes(appContainer, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func imageStore(cfg *config.Config) (media.Store, error) {
	if cfg.ImageProvider == config.ImageProviderSupabase {
		client, err := connect.InitSupabase(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, err
		}
		return media.NewSupabaseStore(client, cfg.SupabaseBucket, "events"), nil
	}

	cld, err := connect.CloudinaryCredentials(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySec)
	if err != nil {
		return nil, err
	}
	return media.NewCloudinaryStore(cld, cfg.CloudinaryDir), nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
