package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/auth"
)

// UserIDKey 是 gin 上下文中保存当前用户 ID 的键。
const UserIDKey = "userID"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验访问令牌并将 userID 注入上下文。
func AuthMiddleware(authService *auth.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateAccessToken(rawToken)
		if err != nil {
			LoggerFromContextOr(c, slog.Default()).Debug("access token rejected", slog.Any("error", err))
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		if value, ok := c.Get(slogLoggerKey); ok {
			if logger, ok := value.(*slog.Logger); ok {
				c.Set(slogLoggerKey, logger.With(slog.Uint64("user_id", uint64(claims.UserID))))
			}
		}
		c.Next()
	}
}

// BearerToken 从 Authorization 头中取出令牌。
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
