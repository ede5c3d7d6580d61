package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Clamd    ClamdConfig    `mapstructure:"clamd"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	CookieDomain   string   `mapstructure:"cookie_domain"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// AuthConfig holds JWT key material and token lifetimes.
type AuthConfig struct {
	PrivateKeyPath  string        `mapstructure:"private_key_path"`
	PublicKeyPath   string        `mapstructure:"public_key_path"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// ClamdConfig points at the virus scanner used for photo uploads.
type ClamdConfig struct {
	Addr string `mapstructure:"addr"`
}

// LimitsConfig bounds per-user usage.
type LimitsConfig struct {
	MaxResumesPerUser     int           `mapstructure:"max_resumes_per_user"`
	PhotoMaxBytes         int64         `mapstructure:"photo_max_bytes"`
	PhotoMIMEWhitelist    []string      `mapstructure:"photo_mime_whitelist"`
	PhotoUploadsPerDay    int           `mapstructure:"photo_uploads_per_day"`
	LoginRateLimitPerHour int           `mapstructure:"login_rate_limit_per_hour"`
	LoginLockThreshold    int           `mapstructure:"login_lock_threshold"`
	LoginLockTTL          time.Duration `mapstructure:"login_lock_ttl"`
}

// PreviewConfig configures the live preview surface.
type PreviewConfig struct {
	BlobPrefix      string        `mapstructure:"blob_prefix"`
	PhotoURLTTL     time.Duration `mapstructure:"photo_url_ttl"`
	DownloadLinkTTL time.Duration `mapstructure:"download_link_ttl"`
	MaxMessageBytes int64         `mapstructure:"max_message_bytes"`
}

// WorkerConfig configures the export worker.
type WorkerConfig struct {
	Concurrency      int           `mapstructure:"concurrency"`
	MaxRetry         int           `mapstructure:"max_retry"`
	ChromiumBin      string        `mapstructure:"chromium_bin"`
	RenderTimeout    time.Duration `mapstructure:"render_timeout"`
	ThumbnailQuality int           `mapstructure:"thumbnail_quality"`
	MetricsPort      int           `mapstructure:"metrics_port"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Addr returns host:port for go-redis and asynq.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(cfg.API.AllowedOrigins)
	cfg.Limits.PhotoMIMEWhitelist = splitList(cfg.Limits.PhotoMIMEWhitelist)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resume_preview")
	v.SetDefault("database.user", "resume_preview")
	v.SetDefault("database.password", "resume_preview")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.public_endpoint", "http://localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("auth.private_key_path", "keys/jwt_private.pem")
	v.SetDefault("auth.public_key_path", "keys/jwt_public.pem")
	v.SetDefault("auth.access_token_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("clamd.addr", "tcp://localhost:3310")
	v.SetDefault("limits.max_resumes_per_user", 20)
	v.SetDefault("limits.photo_max_bytes", 5*1024*1024)
	v.SetDefault("limits.photo_mime_whitelist", []string{"image/png", "image/jpeg", "image/webp"})
	v.SetDefault("limits.photo_uploads_per_day", 50)
	v.SetDefault("limits.login_rate_limit_per_hour", 10)
	v.SetDefault("limits.login_lock_threshold", 5)
	v.SetDefault("limits.login_lock_ttl", 15*time.Minute)
	v.SetDefault("preview.blob_prefix", "/v1/blobs/")
	v.SetDefault("preview.photo_url_ttl", 15*time.Minute)
	v.SetDefault("preview.download_link_ttl", 5*time.Minute)
	v.SetDefault("preview.max_message_bytes", 8*1024*1024)
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.max_retry", 5)
	v.SetDefault("worker.render_timeout", 90*time.Second)
	v.SetDefault("worker.thumbnail_quality", 80)
	v.SetDefault("worker.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                         "API_PORT",
		"api.allowed_origins":              "API_ALLOWED_ORIGINS",
		"api.cookie_domain":                "API_COOKIE_DOMAIN",
		"database.host":                    "DATABASE_HOST",
		"database.port":                    "DATABASE_PORT",
		"database.name":                    "POSTGRES_DB",
		"database.user":                    "POSTGRES_USER",
		"database.password":                "POSTGRES_PASSWORD",
		"database.sslmode":                 "DATABASE_SSLMODE",
		"redis.host":                       "REDIS_HOST",
		"redis.port":                       "REDIS_PORT",
		"minio.endpoint":                   "MINIO_ENDPOINT",
		"minio.public_endpoint":            "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":              "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":          "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":                    "MINIO_USE_SSL",
		"minio.bucket":                     "MINIO_BUCKET",
		"minio.region":                     "MINIO_REGION",
		"minio.bucket_lookup":              "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket":         "MINIO_AUTO_CREATE_BUCKET",
		"auth.private_key_path":            "JWT_PRIVATE_KEY_PATH",
		"auth.public_key_path":             "JWT_PUBLIC_KEY_PATH",
		"auth.access_token_ttl":            "JWT_ACCESS_TOKEN_TTL",
		"auth.refresh_token_ttl":           "JWT_REFRESH_TOKEN_TTL",
		"clamd.addr":                       "CLAMD_ADDR",
		"limits.max_resumes_per_user":      "LIMIT_MAX_RESUMES_PER_USER",
		"limits.photo_max_bytes":           "LIMIT_PHOTO_MAX_BYTES",
		"limits.photo_mime_whitelist":      "LIMIT_PHOTO_MIME_WHITELIST",
		"limits.photo_uploads_per_day":     "LIMIT_PHOTO_UPLOADS_PER_DAY",
		"limits.login_rate_limit_per_hour": "LIMIT_LOGIN_RATE_PER_HOUR",
		"limits.login_lock_threshold":      "LIMIT_LOGIN_LOCK_THRESHOLD",
		"limits.login_lock_ttl":            "LIMIT_LOGIN_LOCK_TTL",
		"preview.blob_prefix":              "PREVIEW_BLOB_PREFIX",
		"preview.photo_url_ttl":            "PREVIEW_PHOTO_URL_TTL",
		"preview.download_link_ttl":        "PREVIEW_DOWNLOAD_LINK_TTL",
		"preview.max_message_bytes":        "PREVIEW_MAX_MESSAGE_BYTES",
		"worker.concurrency":               "WORKER_CONCURRENCY",
		"worker.max_retry":                 "WORKER_MAX_RETRY",
		"worker.chromium_bin":              "WORKER_CHROMIUM_BIN",
		"worker.render_timeout":            "WORKER_RENDER_TIMEOUT",
		"worker.thumbnail_quality":         "WORKER_THUMBNAIL_QUALITY",
		"worker.metrics_port":              "WORKER_METRICS_PORT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList accepts both real lists and a single comma separated env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return errors.New("token ttls must be positive")
	}
	if cfg.Limits.PhotoMaxBytes <= 0 {
		return errors.New("photo max bytes must be positive")
	}
	if len(cfg.Limits.PhotoMIMEWhitelist) == 0 {
		return errors.New("photo mime whitelist must not be empty")
	}
	for _, mime := range cfg.Limits.PhotoMIMEWhitelist {
		if !strings.HasPrefix(mime, "image/") {
			return fmt.Errorf("photo mime %q is not an image type", mime)
		}
	}
	if !strings.HasPrefix(cfg.Preview.BlobPrefix, "/") || !strings.HasSuffix(cfg.Preview.BlobPrefix, "/") {
		return errors.New("preview blob prefix must start and end with /")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	if cfg.Worker.ThumbnailQuality < 1 || cfg.Worker.ThumbnailQuality > 100 {
		return errors.New("worker thumbnail quality must be within 1..100")
	}
	return nil
}
