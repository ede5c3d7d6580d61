package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/config"
	"resumePreview/internal/metrics"
)

// livePreviewRoute 是实时预览的 WebSocket 入口，连接期间一直占用请求。
const livePreviewRoute = "/v1/preview/live"

// NewRouter 构建 Gin 路由引擎，挂载公共中间件、健康检查与指标端点。
func NewRouter(_ *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger, "/health", "/metrics"),
		gin.Recovery(),
		metrics.GinMiddleware(livePreviewRoute),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
