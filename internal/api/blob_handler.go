package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumePreview/internal/photo/objecturl"
)

// BlobHandler 提供实时预览中尚未上传照片的临时地址。
// 引用是随机 UUID，只在会话持有期间有效。
type BlobHandler struct {
	blobs *objecturl.Store
}

func NewBlobHandler(blobs *objecturl.Store) *BlobHandler {
	return &BlobHandler{blobs: blobs}
}

// GET /v1/blobs/:ref
func (h *BlobHandler) ServeBlob(c *gin.Context) {
	if h.blobs == nil {
		NotFound(c, "blob not found")
		return
	}
	data, contentType, ok := h.blobs.Lookup(c.Param("ref"))
	if !ok {
		NotFound(c, "blob not found")
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, contentType, data)
}
