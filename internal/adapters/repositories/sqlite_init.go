package repositories

import (
	"context"
	"cruise-status-service/internal/platform/db"
	"errors"
	"fmt"
)

// InitSchema creates the SQLite tables used for schedule rows and the zone
// lookup cache.
func InitSchema(ctx context.Context, conn *db.SQLite) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	createScheduleRowsQuery := `
	CREATE TABLE IF NOT EXISTS schedule_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ship TEXT NOT NULL,
		port TEXT NOT NULL DEFAULT '',
		country TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL DEFAULT '',
		arrival TEXT NOT NULL DEFAULT '',
		departure TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT ''
	);
	`

	createZoneCacheQuery := `
	CREATE TABLE IF NOT EXISTS zone_cache (
		place TEXT PRIMARY KEY,
		zone TEXT NOT NULL,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_schedule_rows_ship
	ON schedule_rows(ship);
	`

	statements := []string{
		createScheduleRowsQuery,
		createZoneCacheQuery,
		createIndexQuery,
	}

	conn.LockWrite()
	defer conn.UnlockWrite()

	tx, err := conn.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
