package zonelookup

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"cruise-status-service/internal/ports"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultORSBaseURL  = "https://api.openrouteservice.org"
	defaultTZDBBaseURL = "https://api.timezonedb.com"
)

// Recorder for zone cache lookups.
type CacheMetrics interface {
	ZoneCacheObserve(hit bool)
}

type Options struct {
	ORSKey        string
	TimeZoneDBKey string

	// Entries older than CacheTTL are refetched. Zero keeps them forever.
	CacheTTL time.Duration

	// Outbound request rate shared by both APIs. Zero means one per second,
	// the TimeZoneDB free tier limit.
	RateLimit rate.Limit

	Metrics CacheMetrics

	// Overridable for tests.
	HTTPClient  *http.Client
	ORSBaseURL  string
	TZDBBaseURL string
	Retry       RetryConfig

	// Upper bound on one shared upstream lookup. Zero means 30s.
	FlightTimeout time.Duration
}

// TimeZoneDBLookup implements ports.ZoneLookup.
//
// A place is geocoded with OpenRouteService and the resulting position is
// resolved to an IANA zone with TimeZoneDB. Results are cached by place key.
// Concurrent lookups of the same place share one upstream call, outbound
// calls are rate limited, and a circuit breaker stops calling upstream after
// repeated failures.
//
// The lookup is safe for concurrent use.
type TimeZoneDBLookup struct {
	session     *http.Client
	orsKey      string
	tzdbKey     string
	orsBaseURL  string
	tzdbBaseURL string
	retry       RetryConfig

	cache   ports.ZoneCache
	ttl     time.Duration
	metrics CacheMetrics

	limiter       *rate.Limiter
	breaker       *gobreaker.CircuitBreaker
	group         singleflight.Group
	flightTimeout time.Duration

	now func() time.Time
}

func NewTimeZoneDBLookup(opts Options, cache ports.ZoneCache) (*TimeZoneDBLookup, error) {
	if opts.ORSKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if opts.TimeZoneDBKey == "" {
		return nil, errors.New("TimeZoneDB api key is empty")
	}

	l := &TimeZoneDBLookup{
		session:     opts.HTTPClient,
		orsKey:      opts.ORSKey,
		tzdbKey:     opts.TimeZoneDBKey,
		orsBaseURL:  opts.ORSBaseURL,
		tzdbBaseURL: opts.TZDBBaseURL,
		retry:       opts.Retry.withDefaults(),
		cache:       cache,
		ttl:         opts.CacheTTL,
		metrics:     opts.Metrics,
		now:         time.Now,
	}
	if l.session == nil {
		l.session = &http.Client{Timeout: 10 * time.Second}
	}
	if l.orsBaseURL == "" {
		l.orsBaseURL = defaultORSBaseURL
	}
	if l.tzdbBaseURL == "" {
		l.tzdbBaseURL = defaultTZDBBaseURL
	}
	l.flightTimeout = opts.FlightTimeout
	if l.flightTimeout <= 0 {
		l.flightTimeout = 30 * time.Second
	}

	limit := opts.RateLimit
	if limit == 0 {
		limit = rate.Every(time.Second)
	}
	l.limiter = rate.NewLimiter(limit, 1)

	l.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "zone-lookup",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return l, nil
}

// LookupZone returns the IANA zone of a port. An empty zone with a nil error
// means the place could not be resolved.
//
// Callers asking for the same place share one flight. The flight runs on a
// context detached from any single caller, so a caller giving up early only
// abandons its own wait.
func (l *TimeZoneDBLookup) LookupZone(ctx context.Context, port, country string) (string, error) {
	place := domain.PlaceKey(port, country)
	if place == "" {
		return "", errors.New("lookup zone: port must be non-empty")
	}

	ch := l.group.DoChan(place, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.flightTimeout)
		defer cancel()
		return l.lookup(flightCtx, place)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("lookup zone %q: %w", place, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("lookup zone %q: %w", place, res.Err)
		}
		return res.Val.(string), nil
	}
}

func (l *TimeZoneDBLookup) lookup(ctx context.Context, place string) (_ string, err error) {
	defer obs.Time(ctx, "zonelookup.lookup")(&err)

	// Check the persistent cache before issuing external API calls.
	if l.cache != nil {
		hits, err := l.cache.GetMany(ctx, []string{place})
		if err != nil {
			log.Warn().Err(err).Str("place", place).Msg("zone cache read failed")
		} else if entry, ok := hits[place]; ok && l.fresh(entry) {
			l.observe(true)
			return entry.Zone, nil
		}
	}
	l.observe(false)

	res, err := l.breaker.Execute(func() (interface{}, error) {
		return l.fetch(ctx, place)
	})
	if err != nil {
		return "", err
	}
	entry := res.(domain.ZoneEntry)

	if l.cache != nil && entry.Zone != "" {
		if err := l.cache.PutMany(ctx, map[string]domain.ZoneEntry{place: entry}); err != nil {
			log.Warn().Err(err).Str("place", place).Msg("zone cache write failed")
		}
	}

	return entry.Zone, nil
}

// fetch geocodes place and resolves the zone at its position. A place that
// cannot be found yields an empty entry, not an error, so misses never trip
// the breaker.
func (l *TimeZoneDBLookup) fetch(ctx context.Context, place string) (domain.ZoneEntry, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return domain.ZoneEntry{}, fmt.Errorf("rate limit: %w", err)
	}
	coords, found, err := l.geocode(ctx, place)
	if err != nil {
		return domain.ZoneEntry{}, err
	}
	if !found {
		return domain.ZoneEntry{}, nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return domain.ZoneEntry{}, fmt.Errorf("rate limit: %w", err)
	}
	zone, err := l.zoneAt(ctx, coords)
	if err != nil {
		return domain.ZoneEntry{}, err
	}

	return domain.ZoneEntry{Zone: zone, Coordinates: coords, FetchedAt: l.now().UTC()}, nil
}

func (l *TimeZoneDBLookup) fresh(e domain.ZoneEntry) bool {
	if e.Zone == "" {
		return false
	}
	if l.ttl <= 0 || e.FetchedAt.IsZero() {
		return true
	}
	return l.now().Sub(e.FetchedAt) < l.ttl
}

func (l *TimeZoneDBLookup) observe(hit bool) {
	if l.metrics != nil {
		l.metrics.ZoneCacheObserve(hit)
	}
}
