// Package limiter 提供基于令牌桶的本地限流器。
package limiter

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter 定义了限流器的通用行为。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LocalLimiter 全局共享一个令牌桶，忽略 key。
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter 创建本地限流器。r 为每秒令牌数，b 为桶容量。
func NewLocalLimiter(r rate.Limit, b int) *LocalLimiter {
	return &LocalLimiter{limiter: rate.NewLimiter(r, b)}
}

// Allow 尝试取一个令牌。
func (l *LocalLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return l.limiter.Allow(), nil
}

// SetLimit 运行时调整速率与容量，用于配置热更新。
func (l *LocalLimiter) SetLimit(r rate.Limit, b int) {
	l.limiter.SetLimit(r)
	l.limiter.SetBurst(b)
}

// KeyedLimiter 为每个 key（通常是客户端 IP）维护独立的令牌桶。
// 桶数量超过 maxKeys 时整体重置，避免无界增长。
type KeyedLimiter struct {
	mu      sync.Mutex
	r       rate.Limit
	b       int
	maxKeys int
	buckets map[string]*rate.Limiter
}

// NewKeyedLimiter 创建按 key 限流的限流器，maxKeys <= 0 时取 10000。
func NewKeyedLimiter(r rate.Limit, b, maxKeys int) *KeyedLimiter {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &KeyedLimiter{r: r, b: b, maxKeys: maxKeys, buckets: make(map[string]*rate.Limiter)}
}

// Allow 从 key 对应的令牌桶取一个令牌。
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.maxKeys {
			clear(l.buckets)
		}
		bucket = rate.NewLimiter(l.r, l.b)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	return bucket.Allow(), nil
}

// SetLimit 调整之后新建令牌桶的参数，并对已有桶立即生效。
func (l *KeyedLimiter) SetLimit(r rate.Limit, b int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r, l.b = r, b
	for _, bucket := range l.buckets {
		bucket.SetLimit(r)
		bucket.SetBurst(b)
	}
}
