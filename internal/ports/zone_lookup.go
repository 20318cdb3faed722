package ports

import (
	"context"
	"cruise-status-service/internal/domain"
)

// Contract for resolving a time zone id from a port name, an optional ship
// name and an optional explicit zone. Implementations never fail; an
// unresolvable input yields "UTC".
type ZoneResolver interface {
	Resolve(port, ship, explicit string) string
}

// Contract for an external, network-backed zone lookup.
type ZoneLookup interface {
	// Return the IANA zone id for a port located in country.
	LookupZone(ctx context.Context, port, country string) (string, error)
}

// Persistent cache for zone lookups keyed by "{port}, {country}".
type ZoneCache interface {
	GetMany(ctx context.Context, places []string) (map[string]domain.ZoneEntry, error)
	PutMany(ctx context.Context, entries map[string]domain.ZoneEntry) error
}
