package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedPath 汇总所有未命中路由的请求，避免原始 URL 进入标签。
const unmatchedPath = "unmatched"

var (
	registerOnce sync.Once

	httpLabels = []string{"method", "path", "status"}

	// 预览渲染在毫秒级，上传与导出入队多在百毫秒内。
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resume_preview",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP 请求耗时分布（秒），不含长连接。",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, httpLabels)

	requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resume_preview",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP 请求总数。",
	}, httpLabels)

	requestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "resume_preview",
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "当前正在处理的短请求数量。",
	})

	openConnections = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "resume_preview",
		Subsystem: "http",
		Name:      "open_connections",
		Help:      "当前保持中的长连接数量（按路由）。",
	}, []string{"path"})
)

// GinMiddleware 为 Gin 路由注册 Prometheus 指标采集逻辑。
// longLived 中的路由（如实时预览的 WebSocket）计入 open_connections，只计数不记录耗时。
func GinMiddleware(longLived ...string) gin.HandlerFunc {
	registerOnce.Do(func() {
		prometheus.MustRegister(requestDuration, requestTotal, requestsInFlight, openConnections)
	})

	persistent := make(map[string]struct{}, len(longLived))
	for _, p := range longLived {
		persistent[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		_, isLong := persistent[path]

		var active prometheus.Gauge = requestsInFlight
		if isLong {
			active = openConnections.WithLabelValues(path)
		}
		active.Inc()
		defer active.Dec()
		start := time.Now()

		c.Next()

		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		requestTotal.With(labels).Inc()
		if !isLong {
			requestDuration.With(labels).Observe(time.Since(start).Seconds())
		}
	}
}
