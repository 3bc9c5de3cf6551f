package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the catalog and menu tables if they do not exist.
// The unique (flavor_id, menu_date) index backs the per-day idempotency
// guard at the storage level as well.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS flavors (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            tags TEXT[] NOT NULL DEFAULT '{}',
            vegan BOOLEAN NOT NULL DEFAULT FALSE,
            gluten_free BOOLEAN NOT NULL DEFAULT FALSE,
            first_appeared DATE NOT NULL,
            last_appeared DATE,
            total_appearances INTEGER NOT NULL DEFAULT 1,
            total_days_available INTEGER NOT NULL DEFAULT 1,
            rarity_score DOUBLE PRECISION NOT NULL DEFAULT 5.0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_flavors_name ON flavors (lower(name))`,
		`CREATE TABLE IF NOT EXISTS daily_menu_entries (
            id TEXT PRIMARY KEY,
            flavor_id TEXT NOT NULL REFERENCES flavors(id),
            menu_date DATE NOT NULL,
            appearance_number INTEGER NOT NULL,
            days_since_last INTEGER,
            sold_out_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_menu_flavor_date
            ON daily_menu_entries (flavor_id, menu_date)`,
		`CREATE INDEX IF NOT EXISTS idx_menu_date ON daily_menu_entries (menu_date)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
