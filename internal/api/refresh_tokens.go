package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumePreview/internal/auth"
)

const (
	refreshTokenCookieName         = "refresh_token"
	refreshTokenBlacklistKeyPrefix = "auth:refresh:blacklist:"
)

// refreshTokens 管理刷新令牌的 Cookie 与吊销名单。名单以 jti 为键，
// TTL 等于令牌剩余有效期，过期后自然失效。
type refreshTokens struct {
	redis        redis.UniversalClient
	ttl          time.Duration
	cookieDomain string
}

func (r refreshTokens) revoked(ctx context.Context, claims *auth.TokenClaims) (bool, error) {
	err := r.redis.Get(ctx, refreshTokenBlacklistKeyPrefix+claims.ID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

func (r refreshTokens) revoke(ctx context.Context, claims *auth.TokenClaims, now time.Time) error {
	ttl := r.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(now)
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.redis.Set(ctx, refreshTokenBlacklistKeyPrefix+claims.ID, "revoked", ttl).Err()
}

// fromRequest 优先读取 Cookie，其次读取 JSON 请求体。
func (r refreshTokens) fromRequest(c *gin.Context) string {
	if token, err := c.Cookie(refreshTokenCookieName); err == nil && token != "" {
		return token
	}
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (r refreshTokens) setCookie(c *gin.Context, token string, now time.Time) {
	maxAge := int(r.ttl.Seconds())
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	cookie := r.cookie(c, token, maxAge)
	cookie.Expires = now.Add(time.Duration(maxAge) * time.Second)
	http.SetCookie(c.Writer, cookie)
}

func (r refreshTokens) clearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, r.cookie(c, "", -1))
}

func (r refreshTokens) cookie(c *gin.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshTokenCookieName,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   isHTTPSRequest(c),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Domain:   strings.TrimSpace(r.cookieDomain),
	}
}

func isHTTPSRequest(c *gin.Context) bool {
	if c.Request == nil {
		return false
	}
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}
