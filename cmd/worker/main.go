package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/automaxprocs/maxprocs"

	"resumePreview/internal/config"
	"resumePreview/internal/database"
	"resumePreview/internal/exporter"
	"resumePreview/internal/metrics"
	"resumePreview/internal/storage"
	"resumePreview/internal/tasks"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Info(fmt.Sprintf(format, args...))
	}))

	if err := run(logger); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.MustLoad()

	db, err := database.InitDatabase(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO, logger)
	if err != nil {
		return fmt.Errorf("init storage client: %w", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	handler := exporter.NewHandler(
		database.NewResumeStore(db),
		storageClient,
		exporter.RodPrinter{
			Bin:              cfg.Worker.ChromiumBin,
			Timeout:          cfg.Worker.RenderTimeout,
			ThumbnailQuality: cfg.Worker.ThumbnailQuality,
			Logger:           logger,
		},
		exporter.RedisNotifier{Client: redisClient},
		logger,
		cfg.Limits.PhotoMaxBytes,
	)

	if cfg.Worker.MetricsPort > 0 {
		go serveMetrics(logger, fmt.Sprintf(":%d", cfg.Worker.MetricsPort))
	}

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeResumeExport, handler)

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	return server.Run(mux)
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("worker metrics listening", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}

// asynqLogger 把 asynq 的日志转到 slog。
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) asynqLogger {
	return asynqLogger{logger: logger.With(slog.String("component", "asynq"))}
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error(fmt.Sprint(args...)) }

func (l asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
