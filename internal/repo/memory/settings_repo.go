package memory

import (
	"context"
	"sync"
	"time"

	"github.com/chancity/tournamenthub/internal/domain/settings"
)

type SettingsRepo struct {
	mu sync.RWMutex
	s  settings.Settings
}

func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{s: settings.Defaults()}
}

func (r *SettingsRepo) Get(_ context.Context) (settings.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.s, nil
}

func (r *SettingsRepo) SetRegistrationOpen(_ context.Context, open bool) (settings.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.s.RegistrationOpen = open
	r.s.UpdatedAt = time.Now().UTC()

	return r.s, nil
}
