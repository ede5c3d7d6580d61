package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, got, ok)
		}
	}
}

func TestCorrelationAndLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(CorrelationIDMiddleware(), SlogLoggerMiddleware(logger))
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = GetCorrelationID(c)
		LoggerFromContext(c).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(CorrelationIDHeader, "cid-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "cid-1" || w.Header().Get(CorrelationIDHeader) != "cid-1" {
		t.Fatalf("correlation id not propagated: %q", seen)
	}
	if !strings.Contains(buf.String(), "correlation_id=cid-1") || !strings.Contains(buf.String(), "request completed") {
		t.Fatalf("log output: %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(CorrelationIDHeader) == "" {
		t.Fatal("expected generated correlation id")
	}
}

func TestAccessLogLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := gin.New()
	r.Use(SlogLoggerMiddleware(logger, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	tests := []struct {
		path string
		want string
	}{
		{"/health", ""},
		{"/boom", "level=ERROR"},
		{"/missing", "level=WARN"},
	}
	for _, tt := range tests {
		buf.Reset()
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))
		got := buf.String()
		if tt.want == "" {
			if got != "" {
				t.Errorf("%s: expected quiet path to log below info, got %q", tt.path, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) || !strings.Contains(got, "route="+tt.path) {
			t.Errorf("%s: log output %q, want %s", tt.path, got, tt.want)
		}
	}
}
