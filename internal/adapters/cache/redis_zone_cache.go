package cache

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "zone_cache:"

// RedisZoneCache stores zone lookups as JSON values under "zone_cache:{place}".
// With a non-zero TTL Redis expires entries on its own.
type RedisZoneCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisZoneCache(client *redis.Client, ttl time.Duration) *RedisZoneCache {
	return &RedisZoneCache{Client: client, TTL: ttl}
}

type redisZoneEntry struct {
	Zone      string    `json:"zone"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (r *RedisZoneCache) GetMany(ctx context.Context, places []string) (_ map[string]domain.ZoneEntry, err error) {
	defer obs.Time(ctx, "zone.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("zone cache: redis client is nil")
	}

	uniq := uniquePlaces(places)
	if len(uniq) == 0 {
		return map[string]domain.ZoneEntry{}, nil
	}

	keys := make([]string, len(uniq))
	for i, p := range uniq {
		keys[i] = redisKeyPrefix + p
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get zone cache: mget: %w", err)
	}

	out := make(map[string]domain.ZoneEntry, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e redisZoneEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("get zone cache: decode %q: %w", uniq[i], err)
		}
		out[uniq[i]] = domain.ZoneEntry{
			Zone:        e.Zone,
			Coordinates: domain.Coordinates{Lon: e.Lon, Lat: e.Lat},
			FetchedAt:   e.FetchedAt,
		}
	}

	return out, nil
}

func (r *RedisZoneCache) PutMany(ctx context.Context, entries map[string]domain.ZoneEntry) (err error) {
	defer obs.Time(ctx, "zone.cache.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("zone cache: redis client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := r.Client.TxPipeline()
	for place, e := range entries {
		if strings.TrimSpace(place) == "" {
			return fmt.Errorf("insert zone cache: empty place key")
		}

		fetchedAt := e.FetchedAt
		if fetchedAt.IsZero() {
			fetchedAt = time.Now()
		}

		b, err := json.Marshal(redisZoneEntry{
			Zone:      e.Zone,
			Lon:       e.Coordinates.Lon,
			Lat:       e.Coordinates.Lat,
			FetchedAt: fetchedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("insert zone cache: encode %q: %w", place, err)
		}
		pipe.Set(ctx, redisKeyPrefix+place, b, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert zone cache: exec pipeline: %w", err)
	}

	return nil
}
