package storage

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxObjectKeyLen = 200

var photoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UserAssetPrefix 是用户上传照片的目录。
func UserAssetPrefix(userID uint) string {
	return fmt.Sprintf("user-assets/%d/", userID)
}

// NewPhotoKey 为上传的照片生成对象键，扩展名由 MIME 决定。
func NewPhotoKey(userID uint, contentType string) string {
	ext, ok := photoExtensions[contentType]
	if !ok {
		ext = ".png"
	}
	return UserAssetPrefix(userID) + uuid.NewString() + ext
}

// IsUserAssetKey 校验对象键确实属于该用户且是图片。
func IsUserAssetKey(userID uint, key string) bool {
	if key == "" || !utf8.ValidString(key) || len(key) > maxObjectKeyLen {
		return false
	}
	if !strings.HasPrefix(key, UserAssetPrefix(userID)) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	switch strings.ToLower(path.Ext(key)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	default:
		return false
	}
}

// LooksLikeAssetKey 区分对象键与外部 URL。
func LooksLikeAssetKey(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "user-assets/")
}

// ResumeObjectPrefix 是某份简历导出产物的目录，删除简历时整体清理。
func ResumeObjectPrefix(userID, resumeID uint) string {
	return fmt.Sprintf("generated-resumes/%d/%d/", userID, resumeID)
}

// NewResumePDFKey 为一次导出生成 PDF 对象键。
func NewResumePDFKey(userID, resumeID uint) string {
	return ResumeObjectPrefix(userID, resumeID) + uuid.NewString() + ".pdf"
}

// ResumeThumbnailKey 是简历缩略图的固定对象键，每次导出覆盖。
func ResumeThumbnailKey(userID, resumeID uint) string {
	return ResumeObjectPrefix(userID, resumeID) + "preview.jpg"
}
