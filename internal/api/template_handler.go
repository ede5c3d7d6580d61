package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/catalog"
	"resumePreview/internal/layouts"
	"resumePreview/internal/preview"
	"resumePreview/internal/resume"
)

// TemplateHandler 负责模板目录与模板展示页。
type TemplateHandler struct {
	logger *slog.Logger
}

func NewTemplateHandler(logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{logger: logger}
}

type templateResponse struct {
	catalog.Descriptor
	Sections   []string `json:"sections"`
	ShowsPhoto bool     `json:"shows_photo"`
	Default    bool     `json:"default"`
}

func newTemplateResponse(d catalog.Descriptor) templateResponse {
	layout := layouts.Resolve(d.ID)
	return templateResponse{
		Descriptor: d,
		Sections:   layout.Sections(),
		ShowsPhoto: layout.ShowsPhoto(),
		Default:    d.ID == catalog.DefaultID,
	}
}

// GET /v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	descs := catalog.All()
	items := make([]templateResponse, 0, len(descs))
	for _, d := range descs {
		items = append(items, newTemplateResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	d, ok := catalog.Lookup(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}
	c.JSON(http.StatusOK, newTemplateResponse(d))
}

// PreviewTemplate 用示例简历渲染模板，强调色取模板自己的展示色。
// GET /v1/templates/:id/preview
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	d, ok := catalog.Lookup(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}

	width, ok := widthQuery(c)
	if !ok {
		BadRequest(c, "invalid width")
		return
	}

	rec := resume.Sample().WithTemplate(d.ID)
	rec.ColorHex = d.PreviewColor
	writeFrame(c, loggerFrom(c, h.logger), &rec, preview.RenderStatic(rec, width))
}
