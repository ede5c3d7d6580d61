package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 任务结果标签。dropped 表示任务返回 SkipRetry，不会再被调度。
const (
	outcomeSuccess = "success"
	outcomeRetry   = "retry"
	outcomeDropped = "dropped"
)

var (
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_preview",
			Subsystem: "asynq",
			Name:      "tasks_total",
			Help:      "按结果统计的任务处理次数。",
		},
		[]string{"task_type", "outcome"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_preview",
			Subsystem: "asynq",
			Name:      "task_duration_seconds",
			Help:      "任务处理耗时分布（秒），导出包含 Chromium 启动与打印。",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"task_type"},
	)

	taskInProgress = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "resume_preview",
			Subsystem: "asynq",
			Name:      "tasks_in_progress",
			Help:      "当前正在处理的任务数量。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录 Asynq 任务处理指标。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			taskInProgress.WithLabelValues(taskType).Inc()
			defer taskInProgress.WithLabelValues(taskType).Dec()

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			tasksTotal.WithLabelValues(taskType, taskOutcome(err)).Inc()
			return err
		})
	}
}

func taskOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, asynq.SkipRetry):
		return outcomeDropped
	default:
		return outcomeRetry
	}
}
