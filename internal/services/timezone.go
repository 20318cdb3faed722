package services

import (
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/ports"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

// Zone used when nothing else resolves.
const DefaultZone = "UTC"

// ZoneSource resolves zone ids and loads the matching locations.
type ZoneSource interface {
	ports.ZoneResolver
	// Return the location for zone and the id actually used.
	// Unknown ids degrade to UTC.
	Location(zone string) (*time.Location, string)
	// Return the configured zone for a ship, if any.
	ShipZone(ship string) (string, bool)
}

// ZoneTableResolver resolves zones from injected read-only port and ship tables.
// It is safe for concurrent use.
type ZoneTableResolver struct {
	ports map[string]string
	ships map[string]string

	mu   sync.RWMutex
	locs map[string]*time.Location
}

// NewZoneTableResolver copies tables, normalizing port and ship keys the same
// way lookups are normalized.
func NewZoneTableResolver(tables domain.ZoneTables) *ZoneTableResolver {
	r := &ZoneTableResolver{
		ports: make(map[string]string, len(tables.Ports)),
		ships: make(map[string]string, len(tables.Ships)),
		locs:  make(map[string]*time.Location),
	}
	for k, v := range tables.Ports {
		if nk := NormalizePort(k); nk != "" && strings.TrimSpace(v) != "" {
			r.ports[nk] = strings.TrimSpace(v)
		}
	}
	for k, v := range tables.Ships {
		if nk := NormalizeShip(k); nk != "" && strings.TrimSpace(v) != "" {
			r.ships[nk] = strings.TrimSpace(v)
		}
	}
	return r
}

// NormalizePort lower-cases a port name, cuts it at the first of "- / , (" and trims it.
// "Nice (Villefranche)" and "nice - france" both normalize to "nice".
func NormalizePort(port string) string {
	p := strings.ToLower(port)
	if i := strings.IndexAny(p, "-/,("); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(p)
}

// Resolve never fails: explicit zone, then port table, then ship table, then UTC.
func (r *ZoneTableResolver) Resolve(port, ship, explicit string) string {
	if z := strings.TrimSpace(explicit); z != "" {
		return z
	}
	if z, ok := r.PortZone(port); ok {
		return z
	}
	if z, ok := r.ShipZone(ship); ok {
		return z
	}
	return DefaultZone
}

func (r *ZoneTableResolver) PortZone(port string) (string, bool) {
	key := NormalizePort(port)
	if key == "" {
		return "", false
	}
	z, ok := r.ports[key]
	return z, ok
}

func (r *ZoneTableResolver) ShipZone(ship string) (string, bool) {
	key := NormalizeShip(ship)
	if key == "" {
		return "", false
	}
	z, ok := r.ships[key]
	return z, ok
}

// HasPort reports whether the static table knows port.
func (r *ZoneTableResolver) HasPort(port string) bool {
	_, ok := r.PortZone(port)
	return ok
}

// Location loads zone once and memoizes it.
func (r *ZoneTableResolver) Location(zone string) (*time.Location, string) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		zone = DefaultZone
	}

	r.mu.RLock()
	loc, ok := r.locs[zone]
	r.mu.RUnlock()
	if ok {
		return loc, loc.String()
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}

	r.mu.Lock()
	r.locs[zone] = loc
	r.mu.Unlock()

	return loc, loc.String()
}
