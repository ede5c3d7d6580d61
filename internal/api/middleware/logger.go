package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const slogLoggerKey = "slogLogger"

// SlogLoggerMiddleware 为每个请求派生带 Correlation ID 的 slog.Logger，并在请求结束时
// 按状态码分级记录一条访问日志。quietPaths 中的路由（健康检查、指标抓取）只记 Debug。
func SlogLoggerMiddleware(logger *slog.Logger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		requestLogger := logger.With(
			slog.String("correlation_id", GetCorrelationID(c)),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
		)
		c.Set(slogLoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := accessLogLevel(status)
		if _, ok := quiet[route]; ok && level == slog.LevelInfo {
			level = slog.LevelDebug
		}
		// 认证中间件可能已经替换为带 user_id 的 logger。
		LoggerFromContextOr(c, requestLogger).LogAttrs(c.Request.Context(), level, "request completed",
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

func accessLogLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LoggerFromContext 返回上下文中的 slog.Logger。
func LoggerFromContext(c *gin.Context) *slog.Logger {
	return LoggerFromContextOr(c, nil)
}

// LoggerFromContextOr 在请求未经过 SlogLoggerMiddleware 时返回 fallback，fallback 为空时用 slog.Default()。
func LoggerFromContextOr(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if value, ok := c.Get(slogLoggerKey); ok {
		if logger, ok := value.(*slog.Logger); ok {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
