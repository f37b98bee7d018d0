package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/creatorlink/socialsync/internal/models"
)

type fakeCache struct {
	entries map[string]string
	ttls    map[string]time.Duration
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if _, ok := c.entries[key]; ok {
		return false, nil
	}
	c.entries[key] = value
	c.ttls[key] = ttl
	return true, nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.entries[key]
	return ok, nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	count, _ := strconv.ParseInt(c.entries[key], 10, 64)
	count++
	c.entries[key] = strconv.FormatInt(count, 10)
	return count, nil
}

func (c *fakeCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.entries[key], nil
}

func TestLimiterStartsUnlimited(t *testing.T) {
	l := New(newFakeCache(), time.Hour)

	assert.False(t, l.IsLimited(context.Background(), models.PlatformInstagram))
}

func TestCooldownLimitsOnlyThatPlatform(t *testing.T) {
	l := New(newFakeCache(), time.Hour)
	ctx := context.Background()

	l.SetCooldown(ctx, models.PlatformInstagram)

	assert.True(t, l.IsLimited(ctx, models.PlatformInstagram))
	assert.False(t, l.IsLimited(ctx, models.PlatformYoutube))
}

func TestCooldownUsesConfiguredDuration(t *testing.T) {
	cache := newFakeCache()
	l := New(cache, 3600*time.Second)

	l.SetCooldown(context.Background(), models.PlatformInstagram)

	assert.Equal(t, 3600*time.Second, cache.ttls[cooldownKey(models.PlatformInstagram)])
}

func TestLimiterFailsOpen(t *testing.T) {
	cache := newFakeCache()
	l := New(cache, time.Hour)
	ctx := context.Background()

	l.SetCooldown(ctx, models.PlatformInstagram)
	cache.err = errors.New("connection refused")

	assert.False(t, l.IsLimited(ctx, models.PlatformInstagram))
	assert.Zero(t, l.Skips(ctx, models.PlatformInstagram))
}

func TestSkipCounter(t *testing.T) {
	cache := newFakeCache()
	l := New(cache, time.Hour)
	ctx := context.Background()

	assert.Zero(t, l.Skips(ctx, models.PlatformInstagram))

	l.RecordSkip(ctx, models.PlatformInstagram)
	l.RecordSkip(ctx, models.PlatformInstagram)
	l.RecordSkip(ctx, models.PlatformInstagram)

	assert.Equal(t, int64(3), l.Skips(ctx, models.PlatformInstagram))
	assert.Zero(t, l.Skips(ctx, models.PlatformYoutube))

	// the counter carries the cooldown TTL so it resets with the episode
	assert.Equal(t, time.Hour, cache.ttls[skipKey(models.PlatformInstagram)])
}
