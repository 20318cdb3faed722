package services

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/ports"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Recorder for enrichment outcomes; result is one of "hit", "miss", "error".
type EnrichMetrics interface {
	ZoneLookupObserve(result string)
}

// ZoneEnricher fills the TIMEZONE field of rows that lack one using an
// external lookup. It sits in front of the engine; the engine itself never
// touches the network.
//
// Lookups are bounded by Timeout for the whole batch. A failed or timed-out
// lookup leaves the row unchanged, so resolution falls back to the static
// tables and finally UTC.
type ZoneEnricher struct {
	Lookup  ports.ZoneLookup
	Timeout time.Duration
	Workers int
	// Optional: ports the static table already knows are not looked up.
	Known   func(port string) bool
	Metrics EnrichMetrics
}

type placeQuery struct {
	port    string
	country string
}

// Enrich returns a copy of rows with missing zones filled in where the lookup succeeds.
func (z *ZoneEnricher) Enrich(ctx context.Context, rows []domain.ScheduleRow) []domain.ScheduleRow {
	out := make([]domain.ScheduleRow, len(rows))
	copy(out, rows)
	if z == nil || z.Lookup == nil {
		return out
	}

	queries := make(map[string]placeQuery)
	for _, row := range rows {
		if strings.TrimSpace(row.Timezone) != "" || strings.TrimSpace(row.Port) == "" {
			continue
		}
		if z.Known != nil && z.Known(row.Port) {
			continue
		}
		key := domain.PlaceKey(row.Port, row.Country)
		queries[key] = placeQuery{port: row.Port, country: row.Country}
	}
	if len(queries) == 0 {
		return out
	}

	resolved := z.lookupAll(ctx, queries)

	for i, row := range out {
		if strings.TrimSpace(row.Timezone) != "" {
			continue
		}
		if zone, ok := resolved[domain.PlaceKey(row.Port, row.Country)]; ok {
			out[i].Timezone = zone
		}
	}
	return out
}

// lookupAll resolves places concurrently with a bounded number of workers.
func (z *ZoneEnricher) lookupAll(ctx context.Context, queries map[string]placeQuery) map[string]string {
	timeout := z.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	workers := z.Workers
	if workers <= 0 {
		workers = 4
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		resolved = make(map[string]string, len(queries))
		sem      = make(chan struct{}, workers)
	)

	for key, q := range queries {
		wg.Add(1)
		go func(key string, q placeQuery) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			zone, err := z.Lookup.LookupZone(ctx, q.port, q.country)
			if err != nil {
				z.observe("error")
				log.Debug().Err(err).Str("place", key).Msg("zone lookup failed, using static tables")
				return
			}
			zone = strings.TrimSpace(zone)
			if zone == "" {
				z.observe("miss")
				return
			}
			z.observe("hit")

			mu.Lock()
			resolved[key] = zone
			mu.Unlock()
		}(key, q)
	}

	wg.Wait()
	return resolved
}

func (z *ZoneEnricher) observe(result string) {
	if z.Metrics != nil {
		z.Metrics.ZoneLookupObserve(result)
	}
}
