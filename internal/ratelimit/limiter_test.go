package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"lecture-terrace/live-qa/internal/testutils"
)

// TestKey 测试限流键格式
func TestKey(t *testing.T) {
	tests := []struct {
		action    string
		subjectID uint
		expected  string
	}{
		{"answer", 42, "rl:answer:42"},
		{"question", 1, "rl:question:1"},
	}
	for _, tt := range tests {
		if got := Key(tt.action, tt.subjectID); got != tt.expected {
			t.Errorf("Key(%q, %d) = %q, want %q", tt.action, tt.subjectID, got, tt.expected)
		}
	}

	if got := KeyScoped("upvote", 42, 17); got != "rl:upvote:42:17" {
		t.Errorf("KeyScoped = %q, want %q", got, "rl:upvote:42:17")
	}
}

// TestRedisLimiter_NilClient 测试无 Redis 客户端时返回不可用错误
func TestRedisLimiter_NilClient(t *testing.T) {
	limiter := NewRedisLimiter(nil, time.Second)

	_, err := limiter.CheckAndIncrement(context.Background(), "rl:answer:1", 15, time.Minute)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want %v", err, ErrUnavailable)
	}
}

// TestRedisLimiter_Integration 集成测试：固定窗口计数
// 第 maxCount 次放行，第 maxCount+1 次拒绝；被拒绝的尝试同样消耗额度
func TestRedisLimiter_Integration(t *testing.T) {
	redis := testutils.SetupTestRedis(t)
	if redis == nil {
		t.Skip("Redis not available, skipping integration test")
	}

	limiter := NewRedisLimiter(redis, time.Second)
	key := Key("answer", 1)
	const maxCount = 15

	// 前 maxCount 次全部放行
	for i := 1; i <= maxCount; i++ {
		exceeded, err := limiter.CheckAndIncrement(context.Background(), key, maxCount, time.Minute)
		if err != nil {
			t.Fatalf("call %d error: %v", i, err)
		}
		if exceeded {
			t.Fatalf("call %d exceeded = true, want false", i)
		}
	}

	// 第 maxCount+1 次拒绝
	exceeded, err := limiter.CheckAndIncrement(context.Background(), key, maxCount, time.Minute)
	if err != nil {
		t.Fatalf("over-limit call error: %v", err)
	}
	if !exceeded {
		t.Errorf("call %d exceeded = false, want true", maxCount+1)
	}

	// 之后的尝试持续被拒：拒绝也递增计数，不会放进新的请求
	exceeded, err = limiter.CheckAndIncrement(context.Background(), key, maxCount, time.Minute)
	if err != nil {
		t.Fatalf("repeated over-limit call error: %v", err)
	}
	if !exceeded {
		t.Errorf("repeated over-limit call exceeded = false, want true")
	}
}

// TestRedisLimiter_KeyIsolation 集成测试：不同主体的额度相互独立
func TestRedisLimiter_KeyIsolation(t *testing.T) {
	redis := testutils.SetupTestRedis(t)
	if redis == nil {
		t.Skip("Redis not available, skipping integration test")
	}

	limiter := NewRedisLimiter(redis, time.Second)
	const maxCount = 2

	// 用户 1 用完额度
	for i := 0; i <= maxCount; i++ {
		if _, err := limiter.CheckAndIncrement(context.Background(), Key("answer", 1), maxCount, time.Minute); err != nil {
			t.Fatalf("user 1 call error: %v", err)
		}
	}

	// 用户 2 不受影响
	exceeded, err := limiter.CheckAndIncrement(context.Background(), Key("answer", 2), maxCount, time.Minute)
	if err != nil {
		t.Fatalf("user 2 call error: %v", err)
	}
	if exceeded {
		t.Errorf("user 2 exceeded = true, want false")
	}

	// 同一用户的不同动作也相互独立
	exceeded, err = limiter.CheckAndIncrement(context.Background(), Key("question", 1), maxCount, time.Minute)
	if err != nil {
		t.Fatalf("other action call error: %v", err)
	}
	if exceeded {
		t.Errorf("other action exceeded = true, want false")
	}
}

// TestRedisLimiter_WindowAlwaysArmed 集成测试：每次调用都补挂窗口过期
// 计数键绝不能以无 TTL 状态存活，否则一次 EXPIRE 失败会把用户永久限流
func TestRedisLimiter_WindowAlwaysArmed(t *testing.T) {
	redis := testutils.SetupTestRedis(t)
	if redis == nil {
		t.Skip("Redis not available, skipping integration test")
	}

	limiter := NewRedisLimiter(redis, time.Second)
	key := Key("answer", 7)

	if _, err := limiter.CheckAndIncrement(context.Background(), key, 15, time.Minute); err != nil {
		t.Fatalf("call error: %v", err)
	}
	ttl, err := redis.TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("TTL error: %v", err)
	}
	if ttl <= 0 {
		t.Fatalf("TTL = %v, want positive", ttl)
	}

	// 模拟窗口丢失（如 EXPIRE 曾经失败）：剥掉 TTL 后下一次调用必须补回
	if err := redis.Persist(context.Background(), key).Err(); err != nil {
		t.Fatalf("Persist error: %v", err)
	}
	if _, err := limiter.CheckAndIncrement(context.Background(), key, 15, time.Minute); err != nil {
		t.Fatalf("call error: %v", err)
	}
	ttl, err = redis.TTL(context.Background(), key).Result()
	if err != nil {
		t.Fatalf("TTL error: %v", err)
	}
	if ttl <= 0 {
		t.Errorf("TTL after heal = %v, want positive", ttl)
	}
}

// TestRedisLimiter_WindowExpiry 集成测试：窗口过期后额度重置
func TestRedisLimiter_WindowExpiry(t *testing.T) {
	redis := testutils.SetupTestRedis(t)
	if redis == nil {
		t.Skip("Redis not available, skipping integration test")
	}

	limiter := NewRedisLimiter(redis, time.Second)
	key := Key("answer", 3)
	const maxCount = 1

	// 用短窗口耗尽额度
	window := 1 * time.Second
	for i := 0; i <= maxCount; i++ {
		if _, err := limiter.CheckAndIncrement(context.Background(), key, maxCount, window); err != nil {
			t.Fatalf("call error: %v", err)
		}
	}
	exceeded, err := limiter.CheckAndIncrement(context.Background(), key, maxCount, window)
	if err != nil {
		t.Fatalf("call error: %v", err)
	}
	if !exceeded {
		t.Fatalf("exceeded = false, want true before window expiry")
	}

	// 等窗口过期
	time.Sleep(1500 * time.Millisecond)

	exceeded, err = limiter.CheckAndIncrement(context.Background(), key, maxCount, window)
	if err != nil {
		t.Fatalf("post-expiry call error: %v", err)
	}
	if exceeded {
		t.Errorf("exceeded = true, want false after window expiry")
	}
}
