package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/auth"
	"resumePreview/internal/config"
	"resumePreview/internal/database"
)

// AuthHandler 处理注册、登录、刷新与退出。
type AuthHandler struct {
	users       *database.UserStore
	authService *auth.AuthService
	guard       loginGuard
	refresh     refreshTokens
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, redisClient redis.UniversalClient, logger *slog.Logger, limits config.LimitsConfig, cookieDomain string) *AuthHandler {
	return &AuthHandler{
		users:       database.NewUserStore(db),
		authService: authService,
		guard:       newLoginGuard(redisClient, limits),
		refresh: refreshTokens{
			redis:        redisClient,
			ttl:          authService.RefreshTokenTTL(),
			cookieDomain: cookieDomain,
		},
		logger: logger,
		now:    time.Now,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Register 创建新用户账号。
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	logger := middleware.LoggerFromContextOr(c, h.logger).With(slog.String("username", req.Username))

	hashed, err := h.authService.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Username, hashed)
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		logger.Info("register conflict: user already exists")
		Conflict(c, "username already taken")
		return
	case err != nil:
		logger.Error("create user failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	c.Status(http.StatusCreated)
}

// Login 校验口令并返回令牌。未知用户与密码错误同样计入失败次数。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContextOr(c, h.logger).With(slog.String("username", req.Username))

	switch h.guard.check(ctx, c.ClientIP(), req.Username, h.now()) {
	case loginRateLimited:
		TooMany(c, "rate limit exceeded")
		return
	case loginLocked:
		TooMany(c, "account temporarily locked")
		return
	}

	user, err := h.users.ByUsername(ctx, req.Username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Info("login failed: user not found")
		h.guard.fail(ctx, req.Username)
		Unauthorized(c)
		return
	case err != nil:
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !h.authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.guard.fail(ctx, req.Username)
		Unauthorized(c)
		return
	}
	h.guard.reset(ctx, req.Username)

	logger.Info("user logged in", slog.Uint64("user_id", uint64(user.ID)))
	h.issueTokens(c, logger, user.ID)
}

// Refresh 校验刷新令牌并轮换：旧令牌立即吊销。
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refresh.fromRequest(c)
	if token == "" {
		Unauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContextOr(c, h.logger)

	claims, err := h.authService.ValidateRefreshToken(token)
	if err != nil {
		logger.Info("refresh token invalid", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	revoked, err := h.refresh.revoked(ctx, claims)
	if err != nil {
		logger.Error("refresh token blacklist lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	if revoked {
		logger.Info("refresh token revoked", slog.String("jti", claims.ID))
		Unauthorized(c)
		return
	}

	if _, err := h.users.ByID(ctx, claims.UserID); err != nil {
		logger.Info("refresh user not found", slog.Any("error", err))
		Unauthorized(c)
		return
	}

	if err := h.refresh.revoke(ctx, claims, h.now()); err != nil {
		logger.Error("refresh revoke old token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	h.issueTokens(c, logger, claims.UserID)
}

// Logout 吊销刷新令牌并清除 Cookie。
func (h *AuthHandler) Logout(c *gin.Context) {
	token := h.refresh.fromRequest(c)
	if token == "" {
		BadRequest(c, "refresh token missing")
		return
	}

	logger := middleware.LoggerFromContextOr(c, h.logger)
	claims, err := h.authService.ValidateRefreshToken(token)
	if err != nil {
		logger.Info("logout token invalid", slog.Any("error", err))
		Unauthorized(c)
		return
	}
	if err := h.refresh.revoke(c.Request.Context(), claims, h.now()); err != nil {
		logger.Error("logout revoke token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	h.refresh.clearCookie(c)
	c.Status(http.StatusOK)
}

func (h *AuthHandler) issueTokens(c *gin.Context, logger *slog.Logger, userID uint) {
	pair, err := h.authService.GenerateTokenPair(userID)
	if err != nil {
		logger.Error("generate token pair failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	h.refresh.setCookie(c, pair.RefreshToken, h.now())
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
	})
}
