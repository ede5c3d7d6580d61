package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/database"
	"resumePreview/internal/preview"
	"resumePreview/internal/resume"
)

// PreviewHandler 一次性渲染简历，二进制照片以 data URI 内联。
type PreviewHandler struct {
	store  *database.ResumeStore
	photos photoLinker
	logger *slog.Logger
}

func NewPreviewHandler(store *database.ResumeStore, photos photoLinker, logger *slog.Logger) *PreviewHandler {
	return &PreviewHandler{store: store, photos: photos, logger: logger}
}

type previewRequest struct {
	Record resume.Record `json:"record"`
	Width  float64       `json:"width"`
}

// RenderRecord 渲染请求体中的记录，不落库。
// POST /v1/preview
func (h *PreviewHandler) RenderRecord(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if math.IsNaN(req.Width) || math.IsInf(req.Width, 0) {
		BadRequest(c, "invalid width")
		return
	}

	rec := h.photos.link(c.Request.Context(), userID, req.Record)
	writeFrame(c, loggerFrom(c, h.logger), &rec, preview.RenderStatic(rec, req.Width))
}

// RenderResume 渲染已保存的简历。
// GET /v1/resumes/:id/preview
func (h *PreviewHandler) RenderResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	width, ok := widthQuery(c)
	if !ok {
		BadRequest(c, "invalid width")
		return
	}

	ctx := c.Request.Context()
	logger := loggerFrom(c, h.logger)

	id, err := parseID(c.Param("id"))
	if err != nil {
		lookupError(c, err)
		return
	}
	model, err := h.store.GetForUser(ctx, id, userID)
	if err != nil {
		lookupError(c, err)
		return
	}
	rec, err := model.Record()
	if err != nil {
		logger.Error("decode resume failed", slog.Uint64("resume_id", uint64(id)), slog.Any("error", err))
		Internal(c, "failed to decode resume")
		return
	}

	rec = h.photos.link(ctx, userID, rec)
	writeFrame(c, logger, &rec, preview.RenderStatic(rec, width))
}

// widthQuery 读取 ?width=，缺省为 0（未测量，按 1 倍输出）。
func widthQuery(c *gin.Context) (float64, bool) {
	raw := c.Query("width")
	if raw == "" {
		return 0, true
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0, false
	}
	return w, true
}

// writeFrame 按 ?format= 输出：html 返回完整页面，默认返回帧的 JSON。
func writeFrame(c *gin.Context, logger *slog.Logger, rec *resume.Record, frame preview.Frame) {
	if c.Query("format") != "html" {
		c.JSON(http.StatusOK, frame)
		return
	}
	doc, err := preview.Document(preview.DocumentTitle(rec), frame)
	if err != nil {
		logger.Error("build preview document failed", slog.Any("error", err))
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}
