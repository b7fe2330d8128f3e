package db

import (
	"context"
	"errors"
	"time"

	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/domain/user"
	"github.com/chancity/tournamenthub/internal/security"
	"github.com/google/uuid"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
}

// EnsureAdminUser seeds the configured admin account once. It is a no-op when
// no admin credentials are configured or the account already exists.
func EnsureAdminUser(ctx context.Context, users UserStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	err = users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         cfg.AdminRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	// another instance seeded it first
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	return err
}
