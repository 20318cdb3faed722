package domain

import (
	"strings"
	"time"
)

// Read-only lookup tables used to resolve time zones.
// Port keys are normalized port names, ship keys are canonical ship names.
type ZoneTables struct {
	Ports map[string]string
	Ships map[string]string
}

// Cached result of an external zone lookup for a "{port}, {country}" place key.
type ZoneEntry struct {
	Zone        string
	Coordinates Coordinates
	FetchedAt   time.Time
}

// Return the cache key for a port within a country: "{port}, {country}".
// Whitespace is collapsed; an empty country yields just the port and an
// empty port yields "".
func PlaceKey(port, country string) string {
	p := strings.Join(strings.Fields(port), " ")
	if p == "" {
		return ""
	}
	c := strings.Join(strings.Fields(country), " ")
	if c == "" {
		return p
	}
	return p + ", " + c
}
