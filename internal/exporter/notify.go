package exporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 导出通知的状态。
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Notification 经由 Redis 频道推送给实时预览连接，字段名与前端解析保持一致。
type Notification struct {
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	ResumeID      uint     `json:"resume_id"`
	CorrelationID string   `json:"correlation_id"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
}

// Notifier 把通知投递给某个用户。
type Notifier interface {
	Notify(ctx context.Context, userID uint, n Notification) error
}

// NotifyChannel 是用户通知频道名。
func NotifyChannel(userID uint) string {
	return fmt.Sprintf("user_notify:%d", userID)
}

// RedisNotifier 通过 Pub/Sub 发布通知。
type RedisNotifier struct {
	Client redis.UniversalClient
}

func (n RedisNotifier) Notify(ctx context.Context, userID uint, msg Notification) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := NotifyChannel(userID)
	if err := n.Client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}
