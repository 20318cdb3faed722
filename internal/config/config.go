package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Schedule sources.
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Zone cache backends.
const (
	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

// Zone lookup providers.
const (
	LookupNone       = "none"
	LookupTimeZoneDB = "timezonedb"
)

type Config struct {
	Port string

	ScheduleSource string
	ScheduleCSV    string
	DBPath         string
	DatabaseURL    string

	ZoneTablesPath string

	ZoneLookup        string
	ORSKey            string
	TimeZoneDBKey     string
	ZoneLookupTimeout time.Duration

	ZoneCache    string
	ZoneCacheTTL time.Duration
	RedisURL     string

	NATSURL           string
	NATSSubjectPrefix string
	PublishInterval   time.Duration

	CORSOrigins []string
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return v, nil
}

// Load reads configuration from the environment. Call SetupEnvironment first
// so values from .env are visible.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              Get("PORT", "8080"),
		ScheduleSource:    strings.ToLower(Get("SCHEDULE_SOURCE", SourceCSV)),
		ScheduleCSV:       Get("SCHEDULE_CSV", "data/schedules.csv"),
		DBPath:            Get("DB_PATH", "data/app.db"),
		DatabaseURL:       Get("DATABASE_URL", ""),
		ZoneTablesPath:    Get("ZONE_TABLES_PATH", ""),
		ZoneLookup:        strings.ToLower(Get("ZONE_LOOKUP", LookupNone)),
		ORSKey:            Get("ORS_API_KEY", ""),
		TimeZoneDBKey:     Get("TIMEZONEDB_API_KEY", ""),
		ZoneCache:         strings.ToLower(Get("ZONE_CACHE", CacheSQLite)),
		RedisURL:          Get("REDIS_URL", ""),
		NATSURL:           Get("NATS_URL", ""),
		NATSSubjectPrefix: Get("NATS_SUBJECT_PREFIX", "ship_status"),
	}

	timeoutMS, err := getInt("ZONE_LOOKUP_TIMEOUT_MS", 3000)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ZoneLookupTimeout = time.Duration(timeoutMS) * time.Millisecond

	ttlHours, err := getInt("ZONE_CACHE_TTL_HOURS", 0)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ZoneCacheTTL = time.Duration(ttlHours) * time.Hour

	publishSec, err := getInt("PUBLISH_INTERVAL_SEC", 60)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if publishSec == 0 {
		return nil, fmt.Errorf("load config: PUBLISH_INTERVAL_SEC must be positive")
	}
	cfg.PublishInterval = time.Duration(publishSec) * time.Second

	for _, o := range strings.Split(Get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.ScheduleSource {
	case SourceCSV, SourceSQLite:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for SCHEDULE_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown SCHEDULE_SOURCE %q", c.ScheduleSource)
	}

	switch c.ZoneLookup {
	case LookupNone:
	case LookupTimeZoneDB:
		if c.ORSKey == "" || c.TimeZoneDBKey == "" {
			return fmt.Errorf("ORS_API_KEY and TIMEZONEDB_API_KEY are required for ZONE_LOOKUP=%s", LookupTimeZoneDB)
		}
	default:
		return fmt.Errorf("unknown ZONE_LOOKUP %q", c.ZoneLookup)
	}

	switch c.ZoneCache {
	case CacheNone, CacheSQLite:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for ZONE_CACHE=%s", CachePostgres)
		}
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for ZONE_CACHE=%s", CacheRedis)
		}
	default:
		return fmt.Errorf("unknown ZONE_CACHE %q", c.ZoneCache)
	}

	return nil
}

// SetupEnvironment loads .env (if present) and configures the global zerolog
// logger: console output unless ENV=production, level from LOGLEVEL.
func SetupEnvironment() {
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	zerolog.SetGlobalLevel(parseLevel(os.Getenv("LOGLEVEL"), os.Getenv("ENV") == "production"))

	// Reported after the logger is configured.
	if err == nil {
		log.Debug().Msg("loaded environment variables from .env file")
	} else {
		log.Debug().Msg("no .env file found, using environment variables")
	}
}

func parseLevel(raw string, production bool) zerolog.Level {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "":
		if production {
			return zerolog.WarnLevel
		}
		return zerolog.InfoLevel
	case "warning":
		return zerolog.WarnLevel
	}

	level, err := zerolog.ParseLevel(raw)
	if err != nil {
		log.Warn().Str("loglevel", raw).Msg("unknown LOGLEVEL, defaulting to info")
		return zerolog.InfoLevel
	}
	return level
}
