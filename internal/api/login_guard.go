package api

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"resumePreview/internal/config"
)

const (
	loginRateKeyPrefix = "rate:login:"
	loginLockKeyPrefix = "lock:login:"
	loginFailKeyPrefix = "lock:login:fail:"
)

type loginVerdict int

const (
	loginAllowed loginVerdict = iota
	loginRateLimited
	loginLocked
)

// loginGuard 用 Redis 计数限制暴力登录。Redis 不可用时放行，只影响限流不影响登录本身。
type loginGuard struct {
	redis         redis.UniversalClient
	ratePerHour   int
	lockThreshold int
	lockTTL       time.Duration
}

func newLoginGuard(client redis.UniversalClient, limits config.LimitsConfig) loginGuard {
	return loginGuard{
		redis:         client,
		ratePerHour:   limits.LoginRateLimitPerHour,
		lockThreshold: limits.LoginLockThreshold,
		lockTTL:       limits.LoginLockTTL,
	}
}

// check 按 IP+用户名 每小时分桶计数，并检查账号锁定。
func (g loginGuard) check(ctx context.Context, ip, username string, now time.Time) loginVerdict {
	username = strings.ToLower(username)
	rateKey := loginRateKeyPrefix + ip + ":" + username + ":" + now.UTC().Format("2006010215")
	if count, err := incrWithTTL(ctx, g.redis, rateKey, time.Hour); err == nil && g.ratePerHour > 0 && count > int64(g.ratePerHour) {
		return loginRateLimited
	}
	if ttl, _ := g.redis.TTL(ctx, loginLockKeyPrefix+username).Result(); ttl > 0 {
		return loginLocked
	}
	return loginAllowed
}

// fail 记录一次失败，达到阈值后锁定账号。
func (g loginGuard) fail(ctx context.Context, username string) {
	username = strings.ToLower(username)
	count, err := incrWithTTL(ctx, g.redis, loginFailKeyPrefix+username, g.lockTTL)
	if err != nil || g.lockThreshold <= 0 {
		return
	}
	if count >= int64(g.lockThreshold) {
		_ = g.redis.Set(ctx, loginLockKeyPrefix+username, "1", g.lockTTL).Err()
	}
}

// reset 在登录成功后清理失败计数。
func (g loginGuard) reset(ctx context.Context, username string) {
	_ = g.redis.Del(ctx, loginFailKeyPrefix+strings.ToLower(username)).Err()
}
