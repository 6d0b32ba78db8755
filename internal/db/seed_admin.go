package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/platemate/orderhub/internal/config"
	"github.com/platemate/orderhub/internal/domain/user"
	"github.com/platemate/orderhub/internal/observability"
	"github.com/platemate/orderhub/internal/repo/postgres"
	"github.com/platemate/orderhub/internal/security"
)

// EnsureAdminUser seeds the configured admin account on first boot so the
// admin role is reachable without manual inserts.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, prom *observability.Prom, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	username := cfg.AdminUsername
	if username == "" {
		username = "admin"
	}

	users := postgres.NewUsersRepo(pool, prom)

	_, err = users.Create(ctx, username, cfg.AdminEmail, hash, user.RoleAdmin)

	// a concurrent boot may have seeded it first
	if errors.Is(err, user.ErrEmailTaken) || errors.Is(err, user.ErrUsernameTaken) {
		return nil
	}

	return err
}
