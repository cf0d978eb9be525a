package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/wyfcoding/simplex/config"
)

// BigCache 使用 `allegro/bigcache` 实现 Cache。bigcache 只支持全局 TTL，Set 的 expiration 参数被忽略。
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache 按配置创建本地缓存。TTL 为 0 时取 10 分钟，Shards 必须是 2 的幂，非法时回退为 64。
func NewBigCache(cfg config.CacheConfig) (*BigCache, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	bc := bigcache.DefaultConfig(ttl)
	bc.HardMaxCacheSize = cfg.MaxMB
	bc.CleanWindow = min(ttl, 5*time.Minute)
	if cfg.Shards > 0 && cfg.Shards&(cfg.Shards-1) == 0 {
		bc.Shards = cfg.Shards
	} else {
		bc.Shards = 64
	}
	bc.Verbose = false

	c, err := bigcache.New(context.Background(), bc)
	if err != nil {
		return nil, fmt.Errorf("init bigcache: %w", err)
	}
	return &BigCache{cache: c}, nil
}

// Get 读取并反序列化到 value（必须为指针），未命中返回 ErrMiss。
func (c *BigCache) Get(_ context.Context, key string, value any) error {
	data, err := c.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return fmt.Errorf("%w: %s", ErrMiss, key)
		}
		return err
	}
	return json.Unmarshal(data, value)
}

// Set 序列化 value 后写入。
func (c *BigCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.cache.Set(key, data)
}

// Delete 删除一个或多个键，不存在的键被忽略。
func (c *BigCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return err
		}
	}
	return nil
}

// Exists 检查键是否存在。
func (c *BigCache) Exists(_ context.Context, key string) (bool, error) {
	_, err := c.cache.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bigcache.ErrEntryNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Len 返回当前缓存的条目数。
func (c *BigCache) Len() int {
	return c.cache.Len()
}

// Close 释放底层资源。
func (c *BigCache) Close() error {
	return c.cache.Close()
}
