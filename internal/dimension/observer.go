// Package dimension 跟踪预览容器的渲染宽度，并把变化通知给订阅者。
package dimension

import (
	"math"
	"sync"
)

// Width 是容器宽度，未测量前为 Unknown。
type Width struct {
	px    float64
	known bool
}

// Unknown 表示尚未测量。
var Unknown = Width{}

// Known 构造已测量的宽度，非正数与非有限值视为未知。
func Known(px float64) Width {
	if px <= 0 || math.IsNaN(px) || math.IsInf(px, 0) {
		return Unknown
	}
	return Width{px: px, known: true}
}

// Pixels 返回宽度及其是否已知。
func (w Width) Pixels() (float64, bool) {
	return w.px, w.known
}

// IsKnown 表示已测量。
func (w Width) IsKnown() bool { return w.known }

// Observer 保存最近一次测量值，宿主每次布局后调用 Observe。
type Observer struct {
	mu       sync.Mutex
	width    Width
	attached bool
	nextID   int
	subs     map[int]func(Width)
}

// NewObserver 创建处于挂接状态的观察者。
func NewObserver() *Observer {
	return &Observer{attached: true, subs: make(map[int]func(Width))}
}

// Observe 记录新宽度，值变化时同步通知订阅者。Detach 之后的调用被忽略。
func (o *Observer) Observe(w Width) {
	o.mu.Lock()
	if !o.attached || o.width == w {
		o.mu.Unlock()
		return
	}
	o.width = w
	fns := make([]func(Width), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(w)
	}
}

// Width 返回最近一次测量值。
func (o *Observer) Width() Width {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.width
}

// Subscribe 注册变化回调，返回的函数用于取消订阅，可重复调用。
func (o *Observer) Subscribe(fn func(Width)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.attached {
		return func() {}
	}
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Detach 表示容器已不存在：停止观察、清空订阅，宽度回到 Unknown。
func (o *Observer) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attached = false
	o.width = Unknown
	o.subs = make(map[int]func(Width))
}
