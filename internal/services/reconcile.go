package services

import (
	"cruise-status-service/internal/domain"
	"time"
)

// Synthesized port stay when no departure can be found.
const DefaultPortStay = 12 * time.Hour

// parsedStop is the immutable first-phase view of a row: its own timestamps
// parsed in its zone, before any borrowing from neighbors.
type parsedStop struct {
	zone      string
	loc       *time.Location
	arrival   domain.Instant
	departure domain.Instant
	midnight  domain.Instant
}

// Reconcile resolves arrival and departure instants for rows that are already
// in provisional chronological order.
//
// Phase one parses every row on its own. Phase two fills gaps reading only the
// phase-one snapshot, so a value borrowed by one stop is never re-borrowed by
// the next:
//  1. own arrival / departure;
//  2. missing arrival: previous stop's departure;
//  3. missing departure: next stop's arrival;
//  4. missing arrival: schedule date at midnight;
//  5. missing (or earlier) departure: arrival + 12h.
func Reconcile(rows []domain.ScheduleRow, zones ZoneSource) []domain.Stop {
	snapshot := make([]parsedStop, len(rows))
	for i, row := range rows {
		loc, zone := zones.Location(zones.Resolve(row.Port, row.Ship, row.Timezone))
		snapshot[i] = parsedStop{
			zone:      zone,
			loc:       loc,
			arrival:   ParseTimestamp(row.Arrival, loc),
			departure: ParseTimestamp(row.Departure, loc),
			midnight:  ScheduleMidnight(row.Date, loc),
		}
	}

	stops := make([]domain.Stop, len(rows))
	for i, p := range snapshot {
		arrival := p.arrival
		if !arrival.IsResolved() && i > 0 {
			arrival = snapshot[i-1].departure.In(p.loc)
		}

		departure := p.departure
		if !departure.IsResolved() && i+1 < len(snapshot) {
			departure = snapshot[i+1].arrival.In(p.loc)
		}

		arrival = arrival.Or(p.midnight)
		departure = settleDeparture(arrival, departure)

		stops[i] = domain.Stop{
			Row:       rows[i],
			Zone:      p.zone,
			Location:  p.loc,
			Arrival:   arrival,
			Departure: departure,
		}
	}

	return stops
}

// settleDeparture enforces departure >= arrival once arrival is known.
func settleDeparture(arrival, departure domain.Instant) domain.Instant {
	arr, ok := arrival.Get()
	if !ok {
		return departure
	}
	if dep, ok := departure.Get(); ok && !dep.Before(arr) {
		return departure
	}
	return arrival.Add(DefaultPortStay)
}
