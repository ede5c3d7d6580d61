// Package canvas 把布局放进固定 A4 比例的画布，并按容器宽度整体缩放。
package canvas

import (
	"strconv"

	"resumePreview/internal/dimension"
	"resumePreview/internal/layouts"
	"resumePreview/internal/resume"
	"resumePreview/internal/sections"
	"resumePreview/internal/view"
)

const (
	// ReferenceWidthPX 是 A4 在 96 DPI 下的宽度，缩放比例以它为基准。
	ReferenceWidthPX = 794
	// AspectRatio 是 A4 纸的宽高比。
	AspectRatio = "210 / 297"
	// ContentID 标记被缩放的内容块，导出时按它定位。
	ContentID = "resumePreviewContent"
)

// Props 是一次画布渲染的输入。
type Props struct {
	Record   *resume.Record
	Width    dimension.Width
	Mounted  bool
	PhotoSrc string
}

// Result 是渲染结果。
type Result struct {
	Root       *view.Node
	Content    *view.Node
	Scale      float64
	TemplateID string
}

// Scale 仅在已挂载且宽度已知时返回 width/794，否则为 1。
func Scale(w dimension.Width, mounted bool) float64 {
	px, ok := w.Pixels()
	if !mounted || !ok {
		return 1
	}
	return px / ReferenceWidthPX
}

// Render 选择模板布局并生成画布。缩放只作用于内容块，外框始终保持 A4 比例。
func Render(p Props) Result {
	rec := p.Record
	if rec == nil {
		rec = &resume.Record{}
	}
	layout := layouts.Resolve(rec.TemplateID)
	scale := Scale(p.Width, p.Mounted)

	body := layout.Render(sections.NewContext(rec, layout.Variant, p.PhotoSrc))
	content := view.El("div", body).
		AddClass("rp-content").
		SetAttr("id", ContentID).
		SetStyle("width", strconv.Itoa(ReferenceWidthPX)+"px").
		SetStyle("zoom", formatScale(scale))

	root := view.El("div", content).
		AddClass("rp-canvas").
		SetAttr("data-template", layout.ID).
		SetStyle("aspect-ratio", AspectRatio).
		SetStyle("height", "fit-content")

	return Result{Root: root, Content: content, Scale: scale, TemplateID: layout.ID}
}

func formatScale(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
