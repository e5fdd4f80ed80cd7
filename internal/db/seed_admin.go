package db

import (
	"context"
	"errors"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser creates the bootstrap account when ADMIN_USERNAME and
// ADMIN_PASSWORD are configured. Idempotent: an existing account is left
// untouched, including its password.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, hasher *security.Hasher, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := hasher.Hash(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		`,
		uuid.NewString(), cfg.AdminUsername, hash, cfg.AdminRole, now, now,
	)

	return err
}
