package main

import (
	"context"
	"cruise-status-service/internal/adapters/cache"
	"cruise-status-service/internal/adapters/publisher"
	"cruise-status-service/internal/adapters/repositories"
	"cruise-status-service/internal/adapters/zonelookup"
	"cruise-status-service/internal/api"
	"cruise-status-service/internal/config"
	"cruise-status-service/internal/metrics"
	"cruise-status-service/internal/platform/db"
	"cruise-status-service/internal/ports"
	"cruise-status-service/internal/services"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	config.SetupEnvironment()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// resources collects handles that must be closed on shutdown.
type resources struct {
	closers []func()
}

func (r *resources) add(fn func()) { r.closers = append(r.closers, fn) }

func (r *resources) close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := &resources{}
	defer res.close()

	tables, err := config.LoadZoneTables(cfg.ZoneTablesPath)
	if err != nil {
		return err
	}
	zones := services.NewZoneTableResolver(tables)
	collector := metrics.NewCollector()

	var (
		sqlite   *db.SQLite
		postgres *sql.DB
	)
	openSQLite := func() (*db.SQLite, error) {
		if sqlite != nil {
			return sqlite, nil
		}
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		res.add(func() { _ = conn.Close() })
		if err := repositories.InitSchema(ctx, conn); err != nil {
			return nil, err
		}
		sqlite = conn
		return sqlite, nil
	}
	openPostgres := func() (*sql.DB, error) {
		if postgres != nil {
			return postgres, nil
		}
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.add(func() { _ = conn.Close() })
		if err := repositories.InitPostgresSchema(ctx, conn); err != nil {
			return nil, err
		}
		postgres = conn
		return postgres, nil
	}

	var repo ports.ScheduleRepository
	switch cfg.ScheduleSource {
	case config.SourceSQLite:
		conn, err := openSQLite()
		if err != nil {
			return err
		}
		repo = repositories.NewSqliteScheduleRepository(conn)
	case config.SourcePostgres:
		conn, err := openPostgres()
		if err != nil {
			return err
		}
		repo = repositories.NewSQLScheduleRepository(conn)
	default:
		repo = repositories.NewCSVScheduleRepository(cfg.ScheduleCSV)
	}

	var enricher *services.ZoneEnricher
	if cfg.ZoneLookup == config.LookupTimeZoneDB {
		var zoneCache ports.ZoneCache
		switch cfg.ZoneCache {
		case config.CacheSQLite:
			conn, err := openSQLite()
			if err != nil {
				return err
			}
			zoneCache = cache.NewSqliteZoneCache(conn)
		case config.CachePostgres:
			conn, err := openPostgres()
			if err != nil {
				return err
			}
			zoneCache = cache.NewSQLZoneCache(conn)
		case config.CacheRedis:
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("parse REDIS_URL: %w", err)
			}
			client := redis.NewClient(opts)
			res.add(func() { _ = client.Close() })
			zoneCache = cache.NewRedisZoneCache(client, cfg.ZoneCacheTTL)
		}

		lookup, err := zonelookup.NewTimeZoneDBLookup(zonelookup.Options{
			ORSKey:        cfg.ORSKey,
			TimeZoneDBKey: cfg.TimeZoneDBKey,
			CacheTTL:      cfg.ZoneCacheTTL,
			Metrics:       collector,
		}, zoneCache)
		if err != nil {
			return err
		}

		enricher = &services.ZoneEnricher{
			Lookup:  lookup,
			Timeout: cfg.ZoneLookupTimeout,
			Known:   zones.HasPort,
			Metrics: collector,
		}
		log.Info().Str("cache", cfg.ZoneCache).Msg("zone lookup enabled")
	}

	svc := services.NewStatusService(repo, services.NewEngine(zones), enricher, collector)

	if cfg.NATSURL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, collector)
		if err != nil {
			return err
		}
		res.add(pub.Close)

		b := &services.Broadcaster{Service: svc, Publisher: pub, Interval: cfg.PublishInterval}
		go func() {
			if err := b.Run(ctx); err != nil {
				log.Error().Err(err).Msg("status broadcaster stopped")
			}
		}()
		log.Info().Str("subject_prefix", cfg.NATSSubjectPrefix).Dur("interval", cfg.PublishInterval).Msg("status broadcaster started")
	}

	router := api.NewRouter(svc, api.RouterOptions{
		Metrics:     collector.Handler(),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("source", cfg.ScheduleSource).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
