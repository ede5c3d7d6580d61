// Package objecturl 为未上传的照片分配进程内的临时地址，API 通过 /v1/blobs/:ref 提供内容。
package objecturl

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"resumePreview/internal/photo"
	"resumePreview/internal/resume"
)

// DefaultPrefix 与 API 路由保持一致。
const DefaultPrefix = "/v1/blobs/"

type object struct {
	data        []byte
	contentType string
}

// Store 保存已分配的临时对象，直到被 Release。
type Store struct {
	prefix string

	mu      sync.RWMutex
	objects map[string]object
}

// NewStore 创建存储，prefix 为空时使用 DefaultPrefix。
func NewStore(prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{prefix: prefix, objects: make(map[string]object)}
}

// Allocate 登记二进制并返回其地址。
func (s *Store) Allocate(b *resume.Blob) (string, error) {
	ct, err := photo.ContentType(b)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.objects[id] = object{data: b.Data, contentType: ct}
	s.mu.Unlock()
	return s.prefix + id, nil
}

// Release 删除地址对应的对象，未知地址忽略。
func (s *Store) Release(ref string) {
	id := strings.TrimPrefix(ref, s.prefix)
	s.mu.Lock()
	delete(s.objects, id)
	s.mu.Unlock()
}

// Lookup 按 id 或完整地址查找对象。
func (s *Store) Lookup(ref string) ([]byte, string, bool) {
	id := strings.TrimPrefix(ref, s.prefix)
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// Live 返回尚未释放的对象数。
func (s *Store) Live() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
