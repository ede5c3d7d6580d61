package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"resumePreview/internal/preview"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_preview",
			Subsystem: "render",
			Name:      "frames_total",
			Help:      "按模板统计的渲染帧数。",
		},
		[]string{"template"},
	)

	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_preview",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "单帧渲染耗时分布（秒）。",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"template"},
	)

	liveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resume_preview",
			Subsystem: "live",
			Name:      "sessions",
			Help:      "当前打开的实时预览会话数量。",
		},
	)

	blobGaugeOnce sync.Once
)

// PreviewHooks 返回记录渲染指标的会话回调。
func PreviewHooks() preview.Hooks {
	return preview.Hooks{
		OnRender: func(templateID string, elapsed time.Duration) {
			rendersTotal.WithLabelValues(templateID).Inc()
			renderDuration.WithLabelValues(templateID).Observe(elapsed.Seconds())
		},
	}
}

// SessionOpened 与 SessionClosed 维护实时会话数。
func SessionOpened() { liveSessions.Inc() }

func SessionClosed() { liveSessions.Dec() }

// RegisterTransientRefs 暴露尚未释放的临时照片引用数，只在首次调用时注册。
func RegisterTransientRefs(live func() int) {
	blobGaugeOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "resume_preview",
				Subsystem: "live",
				Name:      "transient_photo_refs",
				Help:      "尚未释放的临时照片引用数量。",
			},
			func() float64 { return float64(live()) },
		))
	})
}
