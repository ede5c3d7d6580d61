package api

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrWithTTL 在同一个 MULTI 中自增并设置过期时间。ExpireNX 保证窗口从第一次计数开始，
// 后续自增不会顺延。
func incrWithTTL(ctx context.Context, client redis.Cmdable, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// dailyCounterKey 按 UTC 自然日分桶。
func dailyCounterKey(prefix string, userID uint, now time.Time) string {
	return prefix + now.UTC().Format("20060102") + ":" + uintString(userID)
}
