package cache

import (
	"context"
	"cruise-status-service/internal/adapters/repositories"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/db"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSqliteCache(t *testing.T) *SqliteZoneCache {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, repositories.InitSchema(context.Background(), conn))
	return NewSqliteZoneCache(conn)
}

func TestSqliteZoneCacheRoundTrip(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()
	fetched := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	err := c.PutMany(ctx, map[string]domain.ZoneEntry{
		"Nice, France": {Zone: "Europe/Paris", Coordinates: domain.Coordinates{Lon: 7.27, Lat: 43.70}, FetchedAt: fetched},
		"Papeete":      {Zone: "Pacific/Tahiti"},
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, []string{"Nice, France", "Papeete", "Nice, France", " ", "Atlantis"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	nice := got["Nice, France"]
	assert.Equal(t, "Europe/Paris", nice.Zone)
	assert.InDelta(t, 7.27, nice.Coordinates.Lon, 1e-9)
	assert.True(t, nice.FetchedAt.Equal(fetched))

	assert.False(t, got["Papeete"].FetchedAt.IsZero(), "missing fetch time defaults to now")
}

func TestSqliteZoneCacheReplaces(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, map[string]domain.ZoneEntry{"Nice": {Zone: "Europe/Stale"}}))
	require.NoError(t, c.PutMany(ctx, map[string]domain.ZoneEntry{"Nice": {Zone: "Europe/Paris"}}))

	got, err := c.GetMany(ctx, []string{"Nice"})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", got["Nice"].Zone)
}

func TestSqliteZoneCacheConcurrentWriters(t *testing.T) {
	c := newTestSqliteCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- c.PutMany(ctx, map[string]domain.ZoneEntry{
				"Port " + string(rune('A'+i)): {Zone: "UTC"},
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	places := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		places = append(places, "Port "+string(rune('A'+i)))
	}
	got, err := c.GetMany(ctx, places)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSqliteZoneCacheRejectsEmptyKey(t *testing.T) {
	c := newTestSqliteCache(t)
	err := c.PutMany(context.Background(), map[string]domain.ZoneEntry{"  ": {Zone: "UTC"}})
	assert.Error(t, err)
}

func TestSqliteZoneCacheEmptyInputs(t *testing.T) {
	c := newTestSqliteCache(t)
	got, err := c.GetMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, c.PutMany(context.Background(), nil))

	_, err = (&SqliteZoneCache{}).GetMany(context.Background(), []string{"Nice"})
	assert.Error(t, err)
}
