package cache

import (
	"context"

	"github.com/chancity/tournamenthub/internal/domain/settings"
)

type SettingsStore interface {
	Get(ctx context.Context) (settings.Settings, error)
	SetRegistrationOpen(ctx context.Context, open bool) (settings.Settings, error)
}

// CachedSettings reads through a SettingsCache and invalidates it on writes.
type CachedSettings struct {
	store SettingsStore
	cache SettingsCache
}

func NewCachedSettings(store SettingsStore, c SettingsCache) *CachedSettings {
	return &CachedSettings{store: store, cache: c}
}

func (s *CachedSettings) Get(ctx context.Context) (settings.Settings, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx); ok {
			return v, nil
		}
	}

	v, err := s.store.Get(ctx)
	if err != nil {
		return settings.Settings{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, v)
	}
	return v, nil
}

func (s *CachedSettings) SetRegistrationOpen(ctx context.Context, open bool) (settings.Settings, error) {
	v, err := s.store.SetRegistrationOpen(ctx, open)
	if err != nil {
		return settings.Settings{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return v, nil
}
