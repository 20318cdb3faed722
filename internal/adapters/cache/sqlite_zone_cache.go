package cache

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/db"
	"cruise-status-service/internal/platform/obs"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache mapping place keys ("port, country") to zone lookups.
// Place keys are expected to be normalized by the caller.
type SqliteZoneCache struct {
	DB *db.SQLite
}

func NewSqliteZoneCache(conn *db.SQLite) *SqliteZoneCache {
	return &SqliteZoneCache{DB: conn}
}

// Fetch cached entries for the given places.
func (s *SqliteZoneCache) GetMany(ctx context.Context, places []string) (_ map[string]domain.ZoneEntry, err error) {
	defer obs.Time(ctx, "zone.cache.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("zone cache: db is nil")
	}

	uniq := uniquePlaces(places)
	if len(uniq) == 0 {
		return map[string]domain.ZoneEntry{}, nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, len(uniq))
	for i, p := range uniq {
		ph[i] = "?"
		args[i] = p
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		place,
		zone,
		lon,
		lat,
		fetched_at
	FROM zone_cache
	WHERE place IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.Conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get zone cache: query zone_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.ZoneEntry, len(uniq))
	for rows.Next() {
		var place, zone, fetched string
		var lon, lat float64
		if err := rows.Scan(&place, &zone, &lon, &lat, &fetched); err != nil {
			return nil, fmt.Errorf("get zone cache: scan rows: %w", err)
		}
		// An unreadable timestamp is treated as unknown age.
		fetchedAt, _ := time.Parse(time.RFC3339Nano, fetched)
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
func (s *SqliteZoneCache) PutMany(ctx context.Context, entries map[string]domain.ZoneEntry) (err error) {
	defer obs.Time(ctx, "zone.cache.sqlite.PutMany")(&err)

	if s.DB == nil {
		return errors.New("zone cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	s.DB.LockWrite()
	defer s.DB.UnlockWrite()

	tx, err := s.DB.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert zone cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO zone_cache (
		place,
		zone,
		lon,
		lat,
		fetched_at
	)
	VALUES (?, ?, ?, ?, ?);
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

		_, err := stmt.ExecContext(ctx, place, e.Zone, e.Coordinates.Lon, e.Coordinates.Lat, fetchedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert zone cache place=%q: %w", place, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert zone cache commit: %w", err)
	}

	return nil
}

func uniquePlaces(places []string) []string {
	seen := make(map[string]struct{}, len(places))
	uniq := make([]string, 0, len(places))
	for _, p := range places {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	return uniq
}
