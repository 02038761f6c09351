// Package ratelimit 按 (动作, 主体) 维度的写入限流
// 计数器放在 Redis，固定窗口：INCR 后检查，EXPIRE NX 维持窗口过期
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgDatabase "lecture-terrace/live-qa/pkg/database"
)

// ErrUnavailable 底层存储不可用
// 必须与"超出限额"区分开：这是可重试的基础设施错误，不是校验失败
var ErrUnavailable = errors.New("rate limit backend unavailable")

// Limiter 限流器接口
// 每次调用都会先递增计数再判断，所以被拒绝的尝试同样消耗额度
// （故意的反滥用特性，调用方不要试图在拒绝后回滚计数）
type Limiter interface {
	CheckAndIncrement(ctx context.Context, key string, maxCount int, window time.Duration) (exceeded bool, err error)
}

// Key 构造限流键
// 必须带动作前缀做命名空间隔离，如 rl:answer:42
func Key(action string, subjectID uint) string {
	return fmt.Sprintf("rl:%s:%d", action, subjectID)
}

// KeyScoped 构造带目标实体的细粒度限流键，如 rl:upvote:42:17
func KeyScoped(action string, subjectID, targetID uint) string {
	return fmt.Sprintf("rl:%s:%d:%d", action, subjectID, targetID)
}

// RedisLimiter 基于 Redis 的限流器实现
type RedisLimiter struct {
	redis   *pkgDatabase.RedisClient
	timeout time.Duration
}

// NewRedisLimiter 创建限流器实例
// timeout 限制单次 Redis 往返，超时按 ErrUnavailable 处理
func NewRedisLimiter(redis *pkgDatabase.RedisClient, timeout time.Duration) *RedisLimiter {
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	return &RedisLimiter{redis: redis, timeout: timeout}
}

// CheckAndIncrement 递增计数并判断是否超限
// 返回 true 表示本次调用超出 maxCount（第 maxCount 次仍然放行，第 maxCount+1 次拒绝）
// INCR 和 EXPIRE 走同一个 pipeline：EXPIRE 用 NX 每次都发，
// 只在键没有 TTL 时生效，所以单次 EXPIRE 失败不会留下永不过期的计数器，
// 下一次成功的调用会把窗口补上
func (l *RedisLimiter) CheckAndIncrement(ctx context.Context, key string, maxCount int, window time.Duration) (bool, error) {
	if l.redis == nil {
		return false, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	// 先递增：拒绝的尝试也要占用额度
	pipe := l.redis.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// 严格大于才算超限
	return incr.Val() > int64(maxCount), nil
}
