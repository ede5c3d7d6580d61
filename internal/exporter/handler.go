// Package exporter 消费导出任务：以预览同样的渲染结果打印 PDF 与缩略图。
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"resumePreview/internal/database"
	"resumePreview/internal/errcode"
	"resumePreview/internal/photo"
	"resumePreview/internal/preview"
	"resumePreview/internal/resume"
	"resumePreview/internal/storage"
	"resumePreview/internal/tasks"
)

const (
	notificationType   = "export"
	defaultPhotoMaxLen = 10 << 20
)

// ResumeStore 是导出用到的简历读写，由 database.ResumeStore 实现。
type ResumeStore interface {
	Get(ctx context.Context, id uint) (*database.Resume, error)
	MarkStatus(ctx context.Context, id uint, status string) error
	MarkExported(ctx context.Context, id uint, pdfKey string) error
	SetPreviewKey(ctx context.Context, id uint, key string) error
}

// ObjectStore 由 storage.Client 实现。
type ObjectStore interface {
	ReadObject(ctx context.Context, objectKey string, maxBytes int64) ([]byte, string, error)
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// Handler 实现 asynq.Handler，处理 resume:export 任务。
type Handler struct {
	store         ResumeStore
	objects       ObjectStore
	printer       Printer
	notifier      Notifier
	logger        *slog.Logger
	photoMaxBytes int64
	finalAttempt  func(ctx context.Context) bool
}

// NewHandler 创建任务处理器。
func NewHandler(store ResumeStore, objects ObjectStore, printer Printer, notifier Notifier, logger *slog.Logger, photoMaxBytes int64) *Handler {
	if photoMaxBytes <= 0 {
		photoMaxBytes = defaultPhotoMaxLen
	}
	return &Handler{
		store:         store,
		objects:       objects,
		printer:       printer,
		notifier:      notifier,
		logger:        logger,
		photoMaxBytes: photoMaxBytes,
		finalAttempt:  isFinalAsynqAttempt,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	payload, err := tasks.ParseExportPayload(t)
	if err != nil {
		log.Error("parse export payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
	)
	log.Info("export task started")

	model, err := h.store.Get(ctx, payload.ResumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}
	log = log.With(slog.Uint64("user_id", uint64(model.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !errors.Is(retErr, asynq.SkipRetry) && !h.finalAttempt(ctx) {
			return
		}
		log.Error("export task failed", slog.Any("error", retErr))
		if err := h.store.MarkStatus(ctx, model.ID, database.StatusFailed); err != nil {
			log.Error("mark resume failed status failed", slog.Any("error", err))
		}
		h.notify(ctx, log, model.UserID, Notification{
			Status:        StatusError,
			ResumeID:      model.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  errcode.Message(errcode.SystemError),
		})
	}()

	rec, err := model.Record()
	if err != nil {
		log.Error("decode resume failed", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	rec, missingKeys, err := h.inlinePhoto(ctx, model.UserID, rec)
	if err != nil {
		log.Error("load photo failed", slog.Any("error", err))
		return err
	}

	// 导出不依赖容器宽度：未测量时画布按 1 倍输出。
	frame := preview.RenderStatic(rec, 0)
	document, err := preview.Document(preview.DocumentTitle(&rec), frame)
	if err != nil {
		return fmt.Errorf("build document: %w", err)
	}

	out, err := h.printer.Print(ctx, document)
	if err != nil {
		log.Error("print resume failed", slog.Any("error", err))
		return err
	}

	pdfKey := storage.NewResumePDFKey(model.UserID, model.ID)
	if _, err := h.objects.UploadFile(ctx, pdfKey, bytes.NewReader(out.PDF), int64(len(out.PDF)), "application/pdf"); err != nil {
		log.Error("upload pdf failed", slog.Any("error", err))
		return err
	}
	if err := h.store.MarkExported(ctx, model.ID, pdfKey); err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	if len(out.Thumbnail) > 0 {
		if err := h.saveThumbnail(ctx, model, out.Thumbnail); err != nil {
			log.Warn("save thumbnail failed", slog.Any("error", err))
		}
	}

	notify := Notification{
		Status:        StatusCompleted,
		ResumeID:      model.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if len(missingKeys) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = errcode.Message(errcode.ResourceMissing)
		notify.MissingKeys = missingKeys
		log.Warn("pdf generated with missing photo", slog.Any("missing_keys", missingKeys))
	}
	h.notify(ctx, log, model.UserID, notify)

	log.Info("export task completed", slog.String("pdf_key", pdfKey), slog.Int("template_sections", len(frame.Sections)))
	return nil
}

// inlinePhoto 把保存的对象键换成内联二进制，Chromium 无需访问对象存储。
// 对象缺失、过大或不属于该用户时去掉照片并返回该键；其余读取错误交给重试。
func (h *Handler) inlinePhoto(ctx context.Context, userID uint, rec resume.Record) (resume.Record, []string, error) {
	key, ok := rec.Photo.URL()
	if !ok || !storage.LooksLikeAssetKey(key) {
		return rec, nil, nil
	}
	if !storage.IsUserAssetKey(userID, key) {
		return rec.WithPhoto(resume.Photo{}), []string{key}, nil
	}

	data, contentType, err := h.objects.ReadObject(ctx, key, h.photoMaxBytes)
	if err != nil {
		if storage.IsNoSuchKey(err) || errors.Is(err, storage.ErrObjectTooLarge) {
			return rec.WithPhoto(resume.Photo{}), []string{key}, nil
		}
		return rec, nil, fmt.Errorf("read photo %q: %w", key, err)
	}

	blob := resume.NewBlob(data, contentType)
	if _, err := photo.ContentType(blob); err != nil {
		return rec.WithPhoto(resume.Photo{}), []string{key}, nil
	}
	return rec.WithPhoto(resume.PhotoFromBlob(blob)), nil, nil
}

func (h *Handler) saveThumbnail(ctx context.Context, model *database.Resume, data []byte) error {
	key := storage.ResumeThumbnailKey(model.UserID, model.ID)
	if _, err := h.objects.UploadFile(ctx, key, bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}
	return h.store.SetPreviewKey(ctx, model.ID, key)
}

func (h *Handler) notify(ctx context.Context, log *slog.Logger, userID uint, n Notification) {
	if h.notifier == nil {
		return
	}
	n.Type = notificationType
	if err := h.notifier.Notify(ctx, userID, n); err != nil {
		log.Error("publish notification failed", slog.Any("error", err))
	}
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
