package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/creatorlink/socialsync/internal/models"
	"github.com/redis/go-redis/v9"
)

// Cache is the narrow slice of a shared cache the limiter needs. Keeping it
// small lets tests swap in an in-memory backend.
type Cache interface {
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// Limiter is the per-platform cooldown gate. All reads are advisory: when
// the cache backend is unreachable the limiter fails open so the sync loop
// keeps running without strict enforcement.
type Limiter interface {
	IsLimited(ctx context.Context, platform models.Platform) bool
	SetCooldown(ctx context.Context, platform models.Platform)
	RecordSkip(ctx context.Context, platform models.Platform)
	Skips(ctx context.Context, platform models.Platform) int64
}

const keyPrefix = "social_sync_rate_limit"

type limiter struct {
	cache    Cache
	cooldown time.Duration
}

func New(cache Cache, cooldown time.Duration) Limiter {
	return &limiter{cache: cache, cooldown: cooldown}
}

func cooldownKey(platform models.Platform) string {
	return keyPrefix + ":" + string(platform)
}

func skipKey(platform models.Platform) string {
	return keyPrefix + ":skip:" + string(platform)
}

func (l *limiter) IsLimited(ctx context.Context, platform models.Platform) bool {
	limited, err := l.cache.Exists(ctx, cooldownKey(platform))
	if err != nil {
		slog.Warn("rate limit check failed, failing open", "platform", platform, "error", err.Error())
		return false
	}
	return limited
}

// SetCooldown flags the platform for the configured duration. The flag is a
// TTL entry; there is no explicit clear, it expires on its own. Set-if-absent
// keeps concurrent batches from extending an existing cooldown.
func (l *limiter) SetCooldown(ctx context.Context, platform models.Platform) {
	if _, err := l.cache.SetNX(ctx, cooldownKey(platform), "1", l.cooldown); err != nil {
		slog.Warn("failed to set rate limit cooldown", "platform", platform, "error", err.Error())
		return
	}
	slog.Warn("rate limit cooldown set", "platform", platform, "seconds", l.cooldown.Seconds())
}

// RecordSkip counts an account deferred because of an active cooldown. The
// counter shares the cooldown TTL, so it reflects the current episode only.
// It exists for starvation visibility; nothing acts on it automatically.
func (l *limiter) RecordSkip(ctx context.Context, platform models.Platform) {
	key := skipKey(platform)
	count, err := l.cache.Incr(ctx, key)
	if err != nil {
		slog.Warn("failed to record rate limit skip", "platform", platform, "error", err.Error())
		return
	}
	if count == 1 {
		if err := l.cache.Expire(ctx, key, l.cooldown); err != nil {
			slog.Warn("failed to expire skip counter", "platform", platform, "error", err.Error())
		}
	}
}

func (l *limiter) Skips(ctx context.Context, platform models.Platform) int64 {
	value, err := l.cache.Get(ctx, skipKey(platform))
	if err != nil || value == "" {
		return 0
	}
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

// RedisCache adapts a go-redis client to the Cache interface.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}
