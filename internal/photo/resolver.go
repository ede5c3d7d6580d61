// Package photo 把照片值解析成可直接用作 img src 的地址，并负责临时引用的生命周期。
package photo

import (
	"errors"
	"log/slog"
	"sync"

	"resumePreview/internal/resume"
)

var (
	ErrEmptyBlob = errors.New("photo blob is empty")
	ErrNotImage  = errors.New("photo blob is not an image")
)

// Allocator 为二进制照片分配临时引用。每个成功分配的引用恰好被 Release 一次。
type Allocator interface {
	Allocate(b *resume.Blob) (string, error)
	Release(ref string)
}

// Resolver 绑定在一个已挂载的头部实例上。
// 挂载前 DisplayRef 为空；照片值变化或卸载时释放上一个二进制值的引用。
type Resolver struct {
	alloc  Allocator
	logger *slog.Logger

	mu      sync.Mutex
	value   resume.Photo
	ref     string
	owned   bool
	mounted bool
}

// NewResolver 创建未挂载的解析器。
func NewResolver(alloc Allocator, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{alloc: alloc, logger: logger}
}

// Resolve 设置当前照片值并返回展示地址。值未变化时不会重新分配。
func (r *Resolver) Resolve(p resume.Photo) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Equal(r.value) {
		return r.displayRef()
	}
	r.releaseLocked()
	r.value = p
	if r.mounted {
		r.acquireLocked()
	}
	return r.displayRef()
}

// Mount 标记头部已挂载并解析当前值，重复调用无副作用。
func (r *Resolver) Mount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mounted {
		return
	}
	r.mounted = true
	r.acquireLocked()
}

// Mounted 表示是否已挂载。
func (r *Resolver) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

// DisplayRef 返回当前展示地址，挂载前为空。
func (r *Resolver) DisplayRef() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.displayRef()
}

// Unmount 释放持有的引用。之后可以再次 Mount。
func (r *Resolver) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked()
	r.mounted = false
}

func (r *Resolver) displayRef() string {
	if !r.mounted {
		return ""
	}
	return r.ref
}

func (r *Resolver) acquireLocked() {
	r.ref, r.owned = "", false
	if u, ok := r.value.URL(); ok {
		r.ref = u
		return
	}
	b, ok := r.value.Blob()
	if !ok {
		return
	}
	ref, err := r.alloc.Allocate(b)
	if err != nil {
		r.logger.Warn("photo allocation failed, rendering without photo", "error", err, "digest", b.Digest())
		return
	}
	r.ref, r.owned = ref, true
}

func (r *Resolver) releaseLocked() {
	if r.owned {
		r.alloc.Release(r.ref)
	}
	r.ref, r.owned = "", false
}
