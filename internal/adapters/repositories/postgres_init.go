package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InitPostgresSchema creates the Postgres tables used for schedule rows and
// the zone lookup cache.
func InitPostgresSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init postgres schema: DB is nil")
	}

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS schedule_rows (
			id BIGSERIAL PRIMARY KEY,
			ship TEXT NOT NULL,
			port TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			arrival TEXT NOT NULL DEFAULT '',
			departure TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT ''
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS zone_cache (
			place TEXT PRIMARY KEY,
			zone TEXT NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_rows_ship ON schedule_rows(ship);`,
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init postgres schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init postgres schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init postgres schema: commit tx: %w", err)
	}

	return nil
}
