package postgres

import (
	"context"
	"errors"

	"github.com/chancity/tournamenthub/internal/domain/settings"
	"github.com/chancity/tournamenthub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepo keeps the single settings row (id = 1).
type SettingsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSettingsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SettingsRepo {
	return &SettingsRepo{pool: pool, prom: prom}
}

func (r *SettingsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SettingsRepo) Get(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings

	err := r.observe("settings.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT registration_open, updated_at FROM settings WHERE id = 1`,
		).Scan(&s.RegistrationOpen, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Defaults(), nil
		}
		return settings.Settings{}, err
	}

	return s, nil
}

func (r *SettingsRepo) SetRegistrationOpen(ctx context.Context, open bool) (settings.Settings, error) {
	var s settings.Settings

	err := r.observe("settings.set_registration_open", func() error {
		return r.pool.QueryRow(ctx, `
		INSERT INTO settings (id, registration_open, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE
		SET registration_open = EXCLUDED.registration_open,
		    updated_at = EXCLUDED.updated_at
		RETURNING registration_open, updated_at
	`, open).Scan(&s.RegistrationOpen, &s.UpdatedAt)
	})

	return s, err
}
