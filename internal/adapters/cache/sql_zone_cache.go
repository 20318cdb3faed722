package cache

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLZoneCache is a Postgres-backed cache mapping place keys to zone lookups.
type SQLZoneCache struct {
	DB *sql.DB
}

func NewSQLZoneCache(db *sql.DB) *SQLZoneCache {
	return &SQLZoneCache{DB: db}
}

// Fetch cached entries for the given places.
func (s *SQLZoneCache) GetMany(ctx context.Context, places []string) (_ map[string]domain.ZoneEntry, err error) {
	defer obs.Time(ctx, "zone.cache.postgres.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("zone cache: db is nil")
	}

	uniq := uniquePlaces(places)
	if len(uniq) == 0 {
		return map[string]domain.ZoneEntry{}, nil
	}

	q := `
	SELECT place, zone, lon, lat, fetched_at
	FROM zone_cache
	WHERE place = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get zone cache: query zone_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ZoneEntry, len(uniq))
	for rows.Next() {
		var place, zone string
		var lon, lat float64
		var fetchedAt time.Time
		if err := rows.Scan(&place, &zone, &lon, &lat, &fetchedAt); err != nil {
			return nil, fmt.Errorf("get zone cache: scan rows: %w", err)
		}
		out[place] = domain.ZoneEntry{
			Zone:        zone,
			Coordinates: domain.Coordinates{Lon: lon, Lat: lat},
			FetchedAt:   fetchedAt,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get zone cache: row iteration: %w", err)
	}

	return out, nil
}

// Store place -> zone entries in the cache.
func (s *SQLZoneCache) PutMany(ctx context.Context, entries map[string]domain.ZoneEntry) error {
	if s.DB == nil {
		return errors.New("zone cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert zone cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO zone_cache (place, zone, lon, lat, fetched_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (place) DO UPDATE
	SET zone = EXCLUDED.zone,
		lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		fetched_at = EXCLUDED.fetched_at;
	`)
	if err != nil {
		return fmt.Errorf("insert zone cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for place, e := range entries {
		if strings.TrimSpace(place) == "" {
			return fmt.Errorf("insert zone cache: empty place key")
		}

		fetchedAt := e.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now()
		}

		if _, err := stmt.ExecContext(ctx, place, e.Zone, e.Coordinates.Lon, e.Coordinates.Lat, fetchedAt.UTC()); err != nil {
			return fmt.Errorf("insert zone cache place=%q: %w", place, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert zone cache commit: %w", err)
	}

	return nil
}
