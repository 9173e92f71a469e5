// Package testutil provides database and Redis helpers for store tests.
// Tests using them skip when CODRIVE_TEST_DSN or CODRIVE_TEST_REDIS is not set.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"codrive/internal/infra"
	"codrive/internal/logging"
)

const DSNEnv = "CODRIVE_TEST_DSN"

// NewPool connects to the test database, applies migrations and truncates every table.
// The pool is closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping database test")
	}
	ctx := context.Background()
	pool, err := infra.NewDB(ctx, dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := infra.Migrate(ctx, pool, logging.Discard()); err != nil {
		t.Fatalf("testutil.NewPool: migrate: %v", err)
	}
	_, err = pool.Exec(ctx, `
		TRUNCATE join_request_events, join_requests, rides, locations, point_accounts, driver_ratings,
			bonus_redemptions, bonuses
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("testutil.NewPool: truncate: %v", err)
	}
	return pool
}
