package photo

import (
	"encoding/base64"
	"net/http"
	"strings"

	"resumePreview/internal/resume"
)

// ContentType 校验二进制并返回其图片 MIME 类型；声明类型缺失或为通用二进制时按内容嗅探。
func ContentType(b *resume.Blob) (string, error) {
	if b == nil || len(b.Data) == 0 {
		return "", ErrEmptyBlob
	}
	ct := strings.ToLower(strings.TrimSpace(b.ContentType))
	if ct == "" || strings.HasPrefix(ct, "application/octet-stream") {
		ct = http.DetectContentType(b.Data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", ErrNotImage
	}
	return ct, nil
}

// InlineAllocator 把二进制编码为 data URI，用于一次性渲染和导出，不需要释放。
type InlineAllocator struct{}

// Allocate 返回 data:<mime>;base64,<payload>。
func (InlineAllocator) Allocate(b *resume.Blob) (string, error) {
	ct, err := ContentType(b)
	if err != nil {
		return "", err
	}
	return DataURI(ct, b.Data), nil
}

// Release 无操作。
func (InlineAllocator) Release(string) {}

// DataURI 编码 data URI。
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
