package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/settings"
	"github.com/redis/go-redis/v9"
)

// SettingsCache fronts the settings store for the public registration-status
// endpoint, which the site polls on every form render.
type SettingsCache interface {
	Get(ctx context.Context) (settings.Settings, bool)
	Set(ctx context.Context, s settings.Settings)
	Invalidate(ctx context.Context)
}

const settingsKey = "settings"

type MemorySettings struct {
	c *Cache[settings.Settings]
}

func NewMemorySettings(ttl time.Duration) *MemorySettings {
	return &MemorySettings{c: New[settings.Settings](ttl)}
}

func (m *MemorySettings) Get(_ context.Context) (settings.Settings, bool) {
	return m.c.Get(settingsKey)
}

func (m *MemorySettings) Set(_ context.Context, s settings.Settings) {
	m.c.Set(settingsKey, s)
}

func (m *MemorySettings) Invalidate(_ context.Context) {
	m.c.Delete(settingsKey)
}

// RedisSettings shares the cached settings across API replicas. Redis errors
// are logged and treated as a miss so the database stays the source of truth.
type RedisSettings struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	log *slog.Logger
}

func NewRedisSettings(rdb *redis.Client, prefix string, ttl time.Duration, log *slog.Logger) *RedisSettings {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisSettings{
		rdb: rdb,
		key: prefix + ":" + settingsKey,
		ttl: ttl,
		log: log,
	}
}

func (r *RedisSettings) Get(ctx context.Context) (settings.Settings, bool) {
	raw, err := r.rdb.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WarnContext(ctx, "settings_cache_get_failed", "err", err)
		}
		return settings.Settings{}, false
	}

	var s settings.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.WarnContext(ctx, "settings_cache_decode_failed", "err", err)
		return settings.Settings{}, false
	}

	return s, true
}

func (r *RedisSettings) Set(ctx context.Context, s settings.Settings) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}

	if err := r.rdb.Set(ctx, r.key, raw, r.ttl).Err(); err != nil {
		r.log.WarnContext(ctx, "settings_cache_set_failed", "err", err)
	}
}

func (r *RedisSettings) Invalidate(ctx context.Context) {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		r.log.WarnContext(ctx, "settings_cache_invalidate_failed", "err", err)
	}
}
