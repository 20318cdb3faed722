package repositories

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres-backed implementation of the ScheduleRepository port.
type SQLScheduleRepository struct{ DB *sql.DB }

func NewSQLScheduleRepository(db *sql.DB) *SQLScheduleRepository {
	return &SQLScheduleRepository{DB: db}
}

func (s *SQLScheduleRepository) ListRows(ctx context.Context) (_ []domain.ScheduleRow, err error) {
	defer obs.Time(ctx, "postgres.ListRows")(&err)

	if s.DB == nil {
		return nil, errors.New("sql schedule repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT ship, port, country, date, arrival, departure, timezone
	FROM schedule_rows
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list rows: query schedule_rows table: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// ReplaceRows swaps the stored schedule for rows in one transaction.
func (s *SQLScheduleRepository) ReplaceRows(ctx context.Context, rows []domain.ScheduleRow) error {
	if s.DB == nil {
		return errors.New("sql schedule repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace rows: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `TRUNCATE schedule_rows RESTART IDENTITY;`); err != nil {
		return fmt.Errorf("replace rows: clear schedule_rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO schedule_rows (ship, port, country, date, arrival, departure, timezone)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
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
