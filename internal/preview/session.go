// Package preview 组合宽度观察、画布渲染与照片解析，提供实时预览会话。
package preview

import (
	"log/slog"
	"sync"
	"time"

	"resumePreview/internal/canvas"
	"resumePreview/internal/dimension"
	"resumePreview/internal/layouts"
	"resumePreview/internal/photo"
	"resumePreview/internal/resume"
	"resumePreview/internal/view"
)

// Frame 是一次渲染的输出。
type Frame struct {
	Revision   uint64     `json:"revision"`
	TemplateID string     `json:"template_id"`
	Scale      float64    `json:"scale"`
	Mounted    bool       `json:"mounted"`
	Sections   []string   `json:"sections"`
	HTML       string     `json:"html"`
	Root       *view.Node `json:"-"`
}

// Hooks 在渲染完成时被调用，用于埋点。
type Hooks struct {
	OnRender func(templateID string, elapsed time.Duration)
}

// Option 配置会话。
type Option func(*Session)

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithHooks 设置渲染回调。
func WithHooks(h Hooks) Option {
	return func(s *Session) { s.hooks = h }
}

// Session 对应一个预览实例：宿主先 Render 得到挂载前的首帧，
// 展示后调用 Mount，此后的帧才会按容器宽度缩放并显示照片。
type Session struct {
	alloc    photo.Allocator
	observer *dimension.Observer
	logger   *slog.Logger
	hooks    Hooks

	mu       sync.Mutex
	record   resume.Record
	mounted  bool
	closed   bool
	revision uint64
	// resized 由宽度订阅置位，Resize 读取后清零。
	resized     bool
	unsubscribe func()

	// headerID 是当前头部实例所属的布局，切换布局即视为新的头部实例。
	headerID string
	resolver *photo.Resolver
}

// NewSession 创建未挂载的会话，二进制照片通过 alloc 分配地址。
func NewSession(alloc photo.Allocator, opts ...Option) *Session {
	s := &Session{
		alloc:    alloc,
		observer: dimension.NewObserver(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = s.observer.Subscribe(s.widthChanged)
	return s
}

func (s *Session) widthChanged(dimension.Width) {
	s.mu.Lock()
	s.resized = true
	s.mu.Unlock()
}

// Observer 返回会话的宽度观察者。
func (s *Session) Observer() *dimension.Observer {
	return s.observer
}

// Update 替换当前记录。
func (s *Session) Update(rec resume.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.record = rec
	s.syncHeaderLocked()
}

// Resize 记录容器的新宽度，非正数视为未测量。返回宽度是否变化，
// 未变化时宿主无需重新出帧。
func (s *Session) Resize(px float64) bool {
	s.observer.Observe(dimension.Known(px))

	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.resized
	s.resized = false
	return changed
}

// Mount 标记首帧已展示。
func (s *Session) Mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.mounted {
		return
	}
	s.mounted = true
	s.syncHeaderLocked()
	if s.resolver != nil {
		s.resolver.Mount()
	}
}

// Mounted 表示会话是否已挂载。
func (s *Session) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Render 渲染当前状态。已挂载会话中新建的头部实例会先挂载再出帧，
// 因此返回的总是稳定后的结果。
func (s *Session) Render() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.syncHeaderLocked()
	if s.mounted && s.resolver != nil && !s.resolver.Mounted() {
		s.resolver.Mount()
	}

	photoSrc := ""
	if s.resolver != nil {
		photoSrc = s.resolver.DisplayRef()
	}
	rec := s.record
	res := canvas.Render(canvas.Props{
		Record:   &rec,
		Width:    s.observer.Width(),
		Mounted:  s.mounted,
		PhotoSrc: photoSrc,
	})
	s.revision++

	frame := Frame{
		Revision:   s.revision,
		TemplateID: res.TemplateID,
		Scale:      res.Scale,
		Mounted:    s.mounted,
		Sections:   res.Root.Sections(),
		HTML:       res.Root.String(),
		Root:       res.Root,
	}
	if s.hooks.OnRender != nil {
		s.hooks.OnRender(res.TemplateID, time.Since(start))
	}
	return frame
}

// Close 释放照片引用并停止观察宽度，可重复调用。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.resolver != nil {
		s.resolver.Unmount()
		s.resolver = nil
	}
	s.unsubscribe()
	s.observer.Detach()
}

// syncHeaderLocked 让解析器跟随当前布局与照片值。
func (s *Session) syncHeaderLocked() {
	if s.closed {
		return
	}
	layout := layouts.Resolve(s.record.TemplateID)
	if layout.ID != s.headerID {
		if s.resolver != nil {
			s.resolver.Unmount()
			s.resolver = nil
		}
		s.headerID = layout.ID
		if layout.ShowsPhoto() {
			s.resolver = photo.NewResolver(s.alloc, s.logger)
			s.logger.Debug("header instance created", "template_id", layout.ID)
		}
	}
	if s.resolver != nil {
		s.resolver.Resolve(s.record.Photo)
	}
}
