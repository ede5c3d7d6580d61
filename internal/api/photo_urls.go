package api

import (
	"context"
	"log/slog"
	"time"

	"resumePreview/internal/resume"
	"resumePreview/internal/storage"
)

const defaultPhotoURLTTL = 15 * time.Minute

// photoLinker 把记录中保存的对象键换成短期可访问的预签名地址。
type photoLinker struct {
	storage ObjectStore
	ttl     time.Duration
	logger  *slog.Logger
}

func newPhotoLinker(store ObjectStore, ttl time.Duration, logger *slog.Logger) photoLinker {
	if ttl <= 0 {
		ttl = defaultPhotoURLTTL
	}
	return photoLinker{storage: store, ttl: ttl, logger: logger}
}

// link 返回替换了照片地址的副本。外部 URL 与二进制照片原样保留；
// 不属于该用户的对象键或签名失败时去掉照片。
func (l photoLinker) link(ctx context.Context, userID uint, rec resume.Record) resume.Record {
	raw, ok := rec.Photo.URL()
	if !ok || !storage.LooksLikeAssetKey(raw) {
		return rec
	}
	if !storage.IsUserAssetKey(userID, raw) || l.storage == nil {
		l.logger.Warn("photo key rejected", slog.Uint64("user_id", uint64(userID)), slog.String("key", raw))
		return rec.WithPhoto(resume.Photo{})
	}
	signed, err := l.storage.GeneratePresignedURL(ctx, raw, l.ttl)
	if err != nil {
		l.logger.Error("presign photo failed", slog.String("key", raw), slog.Any("error", err))
		return rec.WithPhoto(resume.Photo{})
	}
	return rec.WithPhoto(resume.PhotoFromURL(signed))
}
