package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/automaxprocs/maxprocs"

	"resumePreview/internal/api"
	"resumePreview/internal/auth"
	"resumePreview/internal/config"
	"resumePreview/internal/database"
	"resumePreview/internal/metrics"
	"resumePreview/internal/photo/objecturl"
	"resumePreview/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Info(fmt.Sprintf(format, args...))
	}))

	if err := run(logger); err != nil {
		logger.Error("api stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.MustLoad()
	logger.Info("api bootstrapped",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
		slog.String("db_sslmode", cfg.Database.SSLMode),
	)

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("database ready")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	queue := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	storageClient, err := storage.NewClient(cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	authService, err := auth.NewAuthServiceFromFiles(
		cfg.Auth.PrivateKeyPath,
		cfg.Auth.PublicKeyPath,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	blobs := objecturl.NewStore(cfg.Preview.BlobPrefix)
	metrics.RegisterTransientRefs(blobs.Live)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, api.Deps{
		Config:  cfg,
		DB:      db,
		Queue:   queue,
		Auth:    authService,
		Redis:   redisClient,
		Storage: storageClient,
		Blobs:   blobs,
		Scanner: api.ClamdScanner{Addr: cfg.Clamd.Addr},
		Logger:  logger,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	return router.Run(address)
}
