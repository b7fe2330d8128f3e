package db

import (
	"context"
	"testing"

	"github.com/chancity/tournamenthub/internal/config"
	"github.com/chancity/tournamenthub/internal/repo/memory"
	"github.com/chancity/tournamenthub/internal/security"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo()
	cfg := config.Config{AdminEmail: "admin@club.test", AdminPassword: "s3cret!", AdminName: "Admin", AdminRole: "admin"}

	if err := EnsureAdminUser(ctx, users, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// second run must not fail on the existing account
	if err := EnsureAdminUser(ctx, users, cfg); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	u, err := users.GetByEmail(ctx, "ADMIN@club.test")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !u.IsAdmin() {
		t.Fatalf("expected admin role, got %q", u.Role)
	}
	if err := security.CheckPassword(u.PasswordHash, "s3cret!"); err != nil {
		t.Fatalf("password hash mismatch: %v", err)
	}
}

func TestEnsureAdminUser_NoCredentials(t *testing.T) {
	users := memory.NewUsersRepo()

	if err := EnsureAdminUser(context.Background(), users, config.Config{}); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
