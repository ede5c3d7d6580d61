package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"resumePreview/internal/api/middleware"
	"resumePreview/internal/catalog"
	"resumePreview/internal/database"
	"resumePreview/internal/resume"
	"resumePreview/internal/storage"
	"resumePreview/internal/tasks"
)

const (
	defaultResumeTitle     = "Untitled resume"
	defaultDownloadLinkTTL = 5 * time.Minute
)

// ResumeHandler 负责简历的增删改查、模板切换与导出。
type ResumeHandler struct {
	store      *database.ResumeStore
	queue      TaskEnqueuer
	storage    ObjectStore
	logger     *slog.Logger
	maxResumes int
	maxRetry   int
	linkTTL    time.Duration
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(store *database.ResumeStore, queue TaskEnqueuer, storageClient ObjectStore, logger *slog.Logger, maxResumes, maxRetry int, linkTTL time.Duration) *ResumeHandler {
	if linkTTL <= 0 {
		linkTTL = defaultDownloadLinkTTL
	}
	return &ResumeHandler{
		store:      store,
		queue:      queue,
		storage:    storageClient,
		logger:     logger,
		maxResumes: maxResumes,
		maxRetry:   maxRetry,
		linkTTL:    linkTTL,
	}
}

type createResumeRequest struct {
	TemplateID string         `json:"template_id"`
	Title      string         `json:"title"`
	Record     *resume.Record `json:"record"`
}

type selectTemplateRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
}

type resumeListItem struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	TemplateID string    `json:"template_id"`
	Status     string    `json:"status"`
	PreviewURL string    `json:"preview_url,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type resumeResponse struct {
	ID         uint          `json:"id"`
	Title      string        `json:"title"`
	TemplateID string        `json:"template_id"`
	Status     string        `json:"status"`
	PdfReady   bool          `json:"pdf_ready"`
	Record     resume.Record `json:"record"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CreateResume 以选定模板新建一份简历，超过限额返回 403。
// POST /v1/resumes
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	var rec resume.Record
	if req.Record != nil {
		rec = *req.Record
	}
	templateID, ok := pickTemplate(req.TemplateID, rec.TemplateID)
	if !ok {
		BadRequest(c, "unknown template")
		return
	}
	rec.TemplateID = templateID
	switch {
	case !resume.Blank(req.Title):
		rec.Title = strings.TrimSpace(req.Title)
	case resume.Blank(rec.Title):
		rec.Title = defaultResumeTitle
	}

	logger := loggerFrom(c, h.logger)
	model, err := h.store.Create(c.Request.Context(), userID, rec, h.maxResumes)
	if err != nil {
		if errors.Is(err, database.ErrResumeLimit) {
			Forbidden(c, "resume limit reached")
			return
		}
		logger.Error("create resume failed", slog.Any("error", err))
		Internal(c, "failed to create resume")
		return
	}

	logger.Info("resume created", slog.Uint64("resume_id", uint64(model.ID)), slog.String("template_id", templateID))
	h.respond(c, http.StatusCreated, model)
}

// pickTemplate 优先使用显式传入的模板；都为空时使用默认模板。
func pickTemplate(candidates ...string) (string, bool) {
	for _, id := range candidates {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := catalog.Lookup(id); !ok {
			return "", false
		}
		return id, true
	}
	return catalog.DefaultID, true
}

// ListResumes 列出用户全部简历。
// GET /v1/resumes
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	logger := loggerFrom(c, h.logger)
	resumes, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("list resumes failed", slog.Any("error", err))
		Internal(c, "failed to list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(resumes))
	for _, r := range resumes {
		item := resumeListItem{
			ID:         r.ID,
			Title:      r.Title,
			TemplateID: catalog.Resolve(r.TemplateID),
			Status:     r.Status,
			UpdatedAt:  r.UpdatedAt,
		}
		if r.PreviewKey != "" && h.storage != nil {
			if u, err := h.storage.GeneratePresignedURL(ctx, r.PreviewKey, h.linkTTL); err == nil {
				item.PreviewURL = u
			} else {
				logger.Warn("presign thumbnail failed", slog.Uint64("resume_id", uint64(r.ID)), slog.Any("error", err))
			}
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /v1/resumes/:id
func (h *ResumeHandler) GetResume(c *gin.Context) {
	model, ok := h.loadOwned(c)
	if !ok {
		return
	}
	h.respond(c, http.StatusOK, model)
}

// UpdateResume 覆盖简历内容；记录未指定模板或标题时沿用原值。
// PUT /v1/resumes/:id
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var rec resume.Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		BadRequest(c, err.Error())
		return
	}

	model, ok := h.loadOwned(c)
	if !ok {
		return
	}

	templateID, ok := pickTemplate(rec.TemplateID, model.TemplateID)
	if !ok {
		BadRequest(c, "unknown template")
		return
	}
	rec.TemplateID = templateID
	if resume.Blank(rec.Title) {
		rec.Title = model.Title
	}

	if err := h.store.UpdateRecord(c.Request.Context(), model, rec); err != nil {
		loggerFrom(c, h.logger).Error("update resume failed", slog.Any("error", err))
		Internal(c, "failed to update resume")
		return
	}
	h.respond(c, http.StatusOK, model)
}

// SelectTemplate 只替换模板 ID，其余内容保持不变。
// PUT /v1/resumes/:id/template
func (h *ResumeHandler) SelectTemplate(c *gin.Context) {
	var req selectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if _, ok := catalog.Lookup(req.TemplateID); !ok {
		BadRequest(c, "unknown template")
		return
	}

	model, ok := h.loadOwned(c)
	if !ok {
		return
	}

	if err := h.store.SetTemplate(c.Request.Context(), model, req.TemplateID); err != nil {
		loggerFrom(c, h.logger).Error("select template failed", slog.Any("error", err))
		Internal(c, "failed to update template")
		return
	}
	h.respond(c, http.StatusOK, model)
}

// DeleteResume 删除简历并清理已导出的文件。
// DELETE /v1/resumes/:id
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	model, ok := h.loadOwned(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := loggerFrom(c, h.logger)
	if err := h.store.Delete(ctx, model); err != nil {
		logger.Error("delete resume failed", slog.Any("error", err))
		Internal(c, "failed to delete resume")
		return
	}

	if h.storage != nil {
		prefix := storage.ResumeObjectPrefix(model.UserID, model.ID)
		if err := h.storage.DeletePrefix(ctx, prefix); err != nil {
			logger.Warn("cleanup resume objects failed", slog.String("prefix", prefix), slog.Any("error", err))
		}
	}

	c.Status(http.StatusNoContent)
}

// ExportResume 将 PDF 导出任务入队并立即返回 202。
// POST /v1/resumes/:id/export
func (h *ResumeHandler) ExportResume(c *gin.Context) {
	model, ok := h.loadOwned(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	logger := loggerFrom(c, h.logger)

	task, err := tasks.NewExportTask(model.ID, model.UserID, middleware.GetCorrelationID(c))
	if err != nil {
		logger.Error("build export task failed", slog.Any("error", err))
		Internal(c, "failed to create task")
		return
	}

	opts := []asynq.Option{}
	if h.maxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(h.maxRetry))
	}
	info, err := h.queue.Enqueue(task, opts...)
	if err != nil {
		logger.Error("enqueue export failed", slog.Any("error", err))
		Internal(c, "failed to enqueue export")
		return
	}

	if err := h.store.MarkStatus(ctx, model.ID, database.StatusQueued); err != nil {
		logger.Warn("mark resume queued failed", slog.Any("error", err))
	}

	logger.Info("export enqueued", slog.Uint64("resume_id", uint64(model.ID)), slog.String("task_id", info.ID))
	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成 PDF 的预签名下载链接。
// GET /v1/resumes/:id/download-link
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	model, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if model.PdfKey == "" {
		Conflict(c, "pdf not ready")
		return
	}
	if h.storage == nil {
		Internal(c, "storage unavailable")
		return
	}

	params := map[string]string{
		"response-content-disposition": fmt.Sprintf("attachment; filename=%q", downloadFilename(model)),
	}
	signedURL, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), model.PdfKey, h.linkTTL, params)
	if err != nil {
		loggerFrom(c, h.logger).Error("presign download failed", slog.Any("error", err))
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "expires_in": int(h.linkTTL.Seconds())})
}

// downloadFilename 只保留字母数字与连字符，避免头部注入。
func downloadFilename(model *database.Resume) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(model.Title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	name := b.String()
	if name == "" {
		name = "resume-" + uintString(model.ID)
	}
	return name + ".pdf"
}

// loadOwned 读取当前用户的简历，失败时已写出响应。
func (h *ResumeHandler) loadOwned(c *gin.Context) (*database.Resume, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}
	model, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		lookupError(c, err)
		return nil, false
	}
	return model, true
}

func (h *ResumeHandler) getResumeForUser(ctx context.Context, idParam string, userID uint) (*database.Resume, error) {
	id, err := parseID(idParam)
	if err != nil {
		return nil, err
	}
	return h.store.GetForUser(ctx, id, userID)
}

func (h *ResumeHandler) respond(c *gin.Context, status int, model *database.Resume) {
	rec, err := model.Record()
	if err != nil {
		loggerFrom(c, h.logger).Error("decode resume failed", slog.Uint64("resume_id", uint64(model.ID)), slog.Any("error", err))
		Internal(c, "failed to decode resume")
		return
	}
	c.JSON(status, resumeResponse{
		ID:         model.ID,
		Title:      model.Title,
		TemplateID: catalog.Resolve(model.TemplateID),
		Status:     model.Status,
		PdfReady:   model.PdfKey != "",
		Record:     rec,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	})
}
