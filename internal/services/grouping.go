package services

import (
	"cruise-status-service/internal/domain"
	"slices"
	"sort"
	"strings"
)

// NormalizeShip returns the canonical ship key: trimmed and upper-cased,
// so "Wind Spirit" and "WIND SPIRIT " group together.
func NormalizeShip(ship string) string {
	return strings.ToUpper(strings.TrimSpace(ship))
}

// GroupRows partitions rows by canonical ship name, preserving input order
// within each group. Rows without a ship name are dropped.
func GroupRows(rows []domain.ScheduleRow) map[string][]domain.ScheduleRow {
	grouped := make(map[string][]domain.ScheduleRow)
	for _, row := range rows {
		ship := NormalizeShip(row.Ship)
		if ship == "" {
			continue
		}
		grouped[ship] = append(grouped[ship], row)
	}
	return grouped
}

// Return the canonical ship names of grouped in ascending order.
func shipNames(grouped map[string][]domain.ScheduleRow) []string {
	names := make([]string, 0, len(grouped))
	for ship := range grouped {
		names = append(names, ship)
	}
	sort.Strings(names)
	return names
}

// SortByScheduleDate returns a copy of rows in provisional chronological order:
// schedule date ascending in each row's zone, input order on ties, and rows
// with an unparseable date last.
func SortByScheduleDate(rows []domain.ScheduleRow, zones ZoneSource) []domain.ScheduleRow {
	type keyed struct {
		row  domain.ScheduleRow
		date domain.Instant
	}

	items := make([]keyed, len(rows))
	for i, row := range rows {
		loc, _ := zones.Location(zones.Resolve(row.Port, row.Ship, row.Timezone))
		items[i] = keyed{row: row, date: ParseTimestamp(row.Date, loc)}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return compareInstants(a.date, b.date)
	})

	out := make([]domain.ScheduleRow, len(items))
	for i, it := range items {
		out[i] = it.row
	}
	return out
}

// SortByArrival returns a copy of stops ordered by resolved arrival, stable on
// ties, with unresolved arrivals last.
func SortByArrival(stops []domain.Stop) []domain.Stop {
	out := slices.Clone(stops)
	slices.SortStableFunc(out, func(a, b domain.Stop) int {
		return compareInstants(a.Arrival, b.Arrival)
	})
	return out
}

// Unresolved instants order after every resolved one.
func compareInstants(a, b domain.Instant) int {
	ta, okA := a.Get()
	tb, okB := b.Get()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return ta.Compare(tb)
}
