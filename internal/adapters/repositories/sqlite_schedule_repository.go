package repositories

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/db"
	"cruise-status-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite-backed implementation of the ScheduleRepository port.
type SqliteScheduleRepository struct{ DB *db.SQLite }

func NewSqliteScheduleRepository(conn *db.SQLite) *SqliteScheduleRepository {
	return &SqliteScheduleRepository{DB: conn}
}

// Return all schedule rows in insertion order.
func (s *SqliteScheduleRepository) ListRows(ctx context.Context) (_ []domain.ScheduleRow, err error) {
	defer obs.Time(ctx, "sqlite.ListRows")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	query := `
	SELECT
		ship,
		port,
		country,
		date,
		arrival,
		departure,
		timezone
	FROM schedule_rows
	ORDER BY id;
	`
	rows, err := s.DB.Conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rows: query schedule_rows table: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// ReplaceRows swaps the stored schedule for rows in one transaction.
func (s *SqliteScheduleRepository) ReplaceRows(ctx context.Context, rows []domain.ScheduleRow) error {
	if s.DB == nil {
		return errors.New("sqlite schedule repository: DB is nil")
	}

	s.DB.LockWrite()
	defer s.DB.UnlockWrite()

	tx, err := s.DB.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace rows: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_rows;`); err != nil {
		return fmt.Errorf("replace rows: clear schedule_rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO schedule_rows (
		ship,
		port,
		country,
		date,
		arrival,
		departure,
		timezone
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("replace rows: prepare insert: %w", err)
	}
	defer stmt.Close()

	if err := insertRows(ctx, stmt, rows); err != nil {
		return fmt.Errorf("replace rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace rows: commit tx: %w", err)
	}

	return nil
}

func scanRows(rows *sql.Rows) ([]domain.ScheduleRow, error) {
	out := make([]domain.ScheduleRow, 0, 64)
	for rows.Next() {
		var r domain.ScheduleRow
		err := rows.Scan(&r.Ship, &r.Port, &r.Country, &r.Date, &r.Arrival, &r.Departure, &r.Timezone)
		if err != nil {
			return nil, fmt.Errorf("list rows: scan row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: row iteration: %w", err)
	}

	return out, nil
}

func insertRows(ctx context.Context, stmt *sql.Stmt, rows []domain.ScheduleRow) error {
	for i, r := range rows {
		_, err := stmt.ExecContext(ctx, r.Ship, r.Port, r.Country, r.Date, r.Arrival, r.Departure, r.Timezone)
		if err != nil {
			return fmt.Errorf("insert row %d ship=%q: %w", i+1, r.Ship, err)
		}
	}
	return nil
}
