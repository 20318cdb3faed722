package zonelookup

import (
	"context"
	"cruise-status-service/internal/domain"
	"fmt"
)

// MockZoneLookup answers from a fixed place -> zone table. Places missing from
// the table are reported as misses; places listed in Fail return an error.
type MockZoneLookup struct {
	m    map[string]string
	Fail map[string]bool
}

func NewMockZoneLookup(zones map[string]string) *MockZoneLookup {
	m := make(map[string]string, len(zones))
	for place, zone := range zones {
		m[domain.PlaceKey(place, "")] = zone
	}
	return &MockZoneLookup{m: m}
}

func (p *MockZoneLookup) LookupZone(ctx context.Context, port, country string) (string, error) {
	place := domain.PlaceKey(port, country)
	if p.Fail[place] {
		return "", fmt.Errorf("lookup %q: mock failure", place)
	}
	return p.m[place], nil
}
