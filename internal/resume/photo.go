package resume

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Blob 是刚选中、尚未上传的图片二进制。
// 同一内容的 Blob 拥有相同的 Digest，渲染层据此判断照片是否变化。
type Blob struct {
	Data        []byte
	ContentType string
	digest      string
}

// NewBlob 复制数据并计算内容摘要。
func NewBlob(data []byte, contentType string) *Blob {
	buf := make([]byte, len(data))
	copy(buf, data)
	sum := sha256.Sum256(buf)
	return &Blob{
		Data:        buf,
		ContentType: strings.TrimSpace(contentType),
		digest:      hex.EncodeToString(sum[:]),
	}
}

// Digest 返回内容的 sha256 十六进制摘要。
func (b *Blob) Digest() string {
	if b == nil {
		return ""
	}
	if b.digest == "" {
		sum := sha256.Sum256(b.Data)
		b.digest = hex.EncodeToString(sum[:])
	}
	return b.digest
}

// Photo 三选一：缺省、原始二进制、已持久化的 URL。
type Photo struct {
	blob *Blob
	url  string
}

// PhotoFromURL 用已持久化的地址构造照片；空白字符串视为缺省。
func PhotoFromURL(u string) Photo {
	return Photo{url: strings.TrimSpace(u)}
}

// PhotoFromBlob 用二进制构造照片；nil 视为缺省。
func PhotoFromBlob(b *Blob) Photo {
	return Photo{blob: b}
}

// IsZero 表示未设置照片。
func (p Photo) IsZero() bool {
	return p.blob == nil && p.url == ""
}

// Blob 返回二进制形式的照片。
func (p Photo) Blob() (*Blob, bool) {
	return p.blob, p.blob != nil
}

// URL 返回已持久化的照片地址。
func (p Photo) URL() (string, bool) {
	if p.blob != nil || p.url == "" {
		return "", false
	}
	return p.url, true
}

// Equal 二进制按摘要比较，URL 按字符串比较。
func (p Photo) Equal(o Photo) bool {
	switch {
	case p.blob != nil && o.blob != nil:
		return p.blob == o.blob || p.blob.Digest() == o.blob.Digest()
	case p.blob != nil || o.blob != nil:
		return false
	default:
		return p.url == o.url
	}
}

func (p Photo) String() string {
	switch {
	case p.blob != nil:
		return "blob:" + p.blob.Digest()
	case p.url != "":
		return p.url
	default:
		return ""
	}
}

type blobJSON struct {
	Data        string `json:"data"`
	ContentType string `json:"content_type"`
}

// MarshalJSON 缺省输出 null，URL 输出字符串，二进制输出 {data, content_type}。
func (p Photo) MarshalJSON() ([]byte, error) {
	switch {
	case p.blob != nil:
		return json.Marshal(blobJSON{
			Data:        base64.StdEncoding.EncodeToString(p.blob.Data),
			ContentType: p.blob.ContentType,
		})
	case p.url != "":
		return json.Marshal(p.url)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON 接受 null、字符串 URL 或 {data, content_type} 对象。
func (p *Photo) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*p = Photo{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode photo url: %w", err)
		}
		*p = PhotoFromURL(s)
		return nil
	case '{':
		var raw blobJSON
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode photo blob: %w", err)
		}
		decoded, err := base64.StdEncoding.DecodeString(raw.Data)
		if err != nil {
			return fmt.Errorf("decode photo blob data: %w", err)
		}
		*p = PhotoFromBlob(NewBlob(decoded, raw.ContentType))
		return nil
	default:
		return fmt.Errorf("unsupported photo value %s", string(trimmed))
	}
}
