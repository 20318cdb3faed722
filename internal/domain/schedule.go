package domain

import "time"

// Represents one raw itinerary row as read from a schedule source.
// Optional columns are carried as empty strings; a ScheduleRow is never
// mutated after it has been read.
type ScheduleRow struct {
	Ship      string
	Port      string
	Country   string
	Date      string
	Arrival   string
	Departure string
	Timezone  string
}

// Represents a single scheduled visit of a ship to a port.
// Arrival and Departure are absolute instants anchored to Zone. When Arrival
// is resolved, Departure is resolved as well and never precedes it.
type Stop struct {
	Row       ScheduleRow
	Zone      string
	Location  *time.Location
	Arrival   Instant
	Departure Instant
}

func (s Stop) Port() string { return s.Row.Port }

// Represents the reconciled itinerary of one ship, ordered by arrival.
// Stops whose arrival could not be resolved are kept at the end.
type ShipSchedule struct {
	Ship  string
	Stops []Stop
}
