package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumePreview/internal/config"
	"resumePreview/internal/storage"
)

const (
	photoUploadCounterPrefix = "quota:photo:"
	defaultPhotoMaxBytes     = 5 << 20
)

// AssetHandler 负责照片上传与访问。
type AssetHandler struct {
	storage       ObjectStore
	redis         redis.UniversalClient
	scanner       VirusScanner
	logger        *slog.Logger
	maxBytes      int64
	allowedMIME   map[string]struct{}
	uploadsPerDay int
	urlTTL        time.Duration
	now           func() time.Time
}

// NewAssetHandler 返回 AssetHandler 实例。scanner 为 nil 时跳过病毒扫描。
func NewAssetHandler(storageClient ObjectStore, redisClient redis.UniversalClient, scanner VirusScanner, logger *slog.Logger, limits config.LimitsConfig, urlTTL time.Duration) *AssetHandler {
	maxBytes := limits.PhotoMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultPhotoMaxBytes
	}
	allowed := make(map[string]struct{}, len(limits.PhotoMIMEWhitelist))
	for _, m := range limits.PhotoMIMEWhitelist {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			allowed[m] = struct{}{}
		}
	}
	if urlTTL <= 0 {
		urlTTL = defaultPhotoURLTTL
	}
	return &AssetHandler{
		storage:       storageClient,
		redis:         redisClient,
		scanner:       scanner,
		logger:        logger,
		maxBytes:      maxBytes,
		allowedMIME:   allowed,
		uploadsPerDay: limits.PhotoUploadsPerDay,
		urlTTL:        urlTTL,
		now:           time.Now,
	}
}

// UploadPhoto 校验、扫描并上传照片，返回应写入记录 photo 字段的对象键。
// POST /v1/assets/photo
func (h *AssetHandler) UploadPhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFrom(c, h.logger).With(slog.Uint64("user_id", uint64(userID)))

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size <= 0 {
		BadRequest(c, "empty file")
		return
	}
	if file.Size > h.maxBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	// 每日上传配额；Redis 不可用时不阻塞上传。
	if h.uploadsPerDay > 0 && h.redis != nil {
		key := dailyCounterKey(photoUploadCounterPrefix, userID, h.now())
		count, err := incrWithTTL(ctx, h.redis, key, 24*time.Hour)
		if err != nil {
			logger.Warn("photo quota counter unavailable", slog.Any("error", err))
		} else if count > int64(h.uploadsPerDay) {
			TooMany(c, "daily upload limit reached")
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(src, h.maxBytes+1))
	src.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}
	if int64(len(data)) > h.maxBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	// 以内容嗅探为准，不信任客户端声明的类型。
	contentType := sniffContentType(data)
	if !h.mimeAllowed(contentType) {
		Error(c, http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	if h.scanner != nil {
		if err := h.scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, ErrMaliciousFile) {
				logger.Warn("malicious upload rejected", slog.Any("error", err))
				BadRequest(c, "malicious file detected")
				return
			}
			logger.Error("scan file failed", slog.Any("error", err))
			Internal(c, "failed to scan file")
			return
		}
	}

	objectKey := storage.NewPhotoKey(userID, contentType)
	if _, err := h.storage.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		logger.Error("upload file failed", slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	logger.Info("photo uploaded", slog.String("object_key", objectKey), slog.Int("size", len(data)))
	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

// GetPhotoURL 返回照片的临时预签名 URL。
// GET /v1/assets/photo?key=
func (h *AssetHandler) GetPhotoURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := strings.TrimSpace(c.Query("key"))
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}
	if !storage.IsUserAssetKey(userID, objectKey) {
		Forbidden(c, "access denied")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), objectKey, h.urlTTL)
	if err != nil {
		loggerFrom(c, h.logger).Error("generate presigned url failed", slog.Any("error", err))
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *AssetHandler) mimeAllowed(contentType string) bool {
	if !strings.HasPrefix(contentType, "image/") {
		return false
	}
	if len(h.allowedMIME) == 0 {
		return true
	}
	_, ok := h.allowedMIME[contentType]
	return ok
}

func sniffContentType(data []byte) string {
	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return "application/octet-stream"
	}
	return strings.ToLower(mediaType)
}
