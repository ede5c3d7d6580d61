package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"resumePreview/internal/photo"
	"resumePreview/internal/resume"
	"resumePreview/internal/view"
)

//go:embed assets/preview.css
var stylesheet string

// Stylesheet 返回预览页面使用的样式表。
func Stylesheet() string {
	return stylesheet
}

// DocumentTitle 以姓名或简历标题命名页面。
func DocumentTitle(rec *resume.Record) string {
	if name := strings.TrimSpace(strings.TrimSpace(rec.FirstName) + " " + strings.TrimSpace(rec.LastName)); name != "" {
		return name
	}
	if t := strings.TrimSpace(rec.Title); t != "" {
		return t
	}
	return "Resume"
}

// WriteDocument 把帧包装成完整的 HTML 页面写出。
func WriteDocument(w io.Writer, title string, f Frame) error {
	if f.Root == nil {
		return fmt.Errorf("frame %d has no content", f.Revision)
	}
	return view.RenderDocument(w, view.Document{
		Title:      title,
		Stylesheet: stylesheet,
		Body:       f.Root,
	})
}

// Document 返回完整页面的字节。
func Document(title string, f Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, title, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderStatic 一次性渲染记录：挂载后立即出帧并关闭会话。
// 二进制照片以 data URI 内联，产物可以脱离进程独立展示。
func RenderStatic(rec resume.Record, widthPX float64) Frame {
	s := NewSession(photo.InlineAllocator{})
	defer s.Close()
	s.Update(rec)
	s.Resize(widthPX)
	s.Mount()
	return s.Render()
}
