package main

import (
	"context"
	"cruise-status-service/internal/adapters/repositories"
	"cruise-status-service/internal/config"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/db"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// dbtool initializes the schema and seeds schedule rows from a CSV file into
// SQLite (default) or Postgres.
func main() {
	config.SetupEnvironment()

	target := flag.String("target", config.SourceSQLite, "database to seed: sqlite or postgres")
	csvPath := flag.String("csv", config.Get("SCHEDULE_CSV", "data/schedules.csv"), "schedule CSV to load")
	initOnly := flag.Bool("init-only", false, "create the schema without seeding")
	flag.Parse()

	if err := run(context.Background(), *target, *csvPath, *initOnly); err != nil {
		log.Fatal().Err(err).Msg("dbtool failed")
	}
}

type rowReplacer interface {
	ReplaceRows(ctx context.Context, rows []domain.ScheduleRow) error
}

func run(ctx context.Context, target, csvPath string, initOnly bool) error {
	var repo rowReplacer

	log.Info().Str("target", target).Msg("initializing database schema")
	switch target {
	case config.SourceSQLite:
		conn, err := db.OpenSQLite(config.Get("DB_PATH", "data/app.db"))
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		repo = repositories.NewSqliteScheduleRepository(conn)
	case config.SourcePostgres:
		databaseURL := config.Get("DATABASE_URL", "")
		if databaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		conn, err := db.Open(databaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			return fmt.Errorf("schema initialization failed: %w", err)
		}
		repo = repositories.NewSQLScheduleRepository(conn)
	default:
		return fmt.Errorf("unknown target %q", target)
	}
	log.Info().Msg("schema ready")

	if initOnly {
		return nil
	}

	if _, err := os.Stat(csvPath); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	rows, err := repositories.NewCSVScheduleRepository(csvPath).ListRows(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	log.Info().Str("csv", csvPath).Int("rows", len(rows)).Msg("seeding schedule rows")
	if err := repo.ReplaceRows(ctx, rows); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Info().Msg("seeding complete")

	return nil
}
