package config

import (
	"reflect"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if cfg.Preview.BlobPrefix != "/v1/blobs/" {
		t.Errorf("blob prefix = %q", cfg.Preview.BlobPrefix)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("access ttl = %v", cfg.Auth.AccessTokenTTL)
	}
	want := []string{"image/png", "image/jpeg", "image/webp"}
	if !reflect.DeepEqual(cfg.Limits.PhotoMIMEWhitelist, want) {
		t.Errorf("whitelist = %v", cfg.Limits.PhotoMIMEWhitelist)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr())
	}
}

func TestLoadFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WORKER_RENDER_TIMEOUT", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if !reflect.DeepEqual(cfg.API.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("origins = %v", cfg.API.AllowedOrigins)
	}
	if cfg.Worker.RenderTimeout != 2*time.Minute {
		t.Errorf("render timeout = %v", cfg.Worker.RenderTimeout)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing minio secret", map[string]string{"MINIO_SECRET_ACCESS_KEY": ""}},
		{"non image mime", map[string]string{"LIMIT_PHOTO_MIME_WHITELIST": "application/pdf"}},
		{"bad blob prefix", map[string]string{"PREVIEW_BLOB_PREFIX": "blobs"}},
		{"bad thumbnail quality", map[string]string{"WORKER_THUMBNAIL_QUALITY": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
