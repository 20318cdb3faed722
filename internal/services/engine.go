package services

import (
	"context"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/platform/obs"
	"time"
)

// Engine is the single status-derivation pipeline:
// group -> provisional date order -> reconcile -> order by arrival -> classify.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	zones ZoneSource
}

func NewEngine(zones ZoneSource) *Engine {
	return &Engine{zones: zones}
}

// Schedules returns the reconciled itinerary of every ship, ordered by ship name.
func (e *Engine) Schedules(rows []domain.ScheduleRow) []domain.ShipSchedule {
	grouped := GroupRows(rows)
	out := make([]domain.ShipSchedule, 0, len(grouped))
	for _, ship := range shipNames(grouped) {
		out = append(out, e.schedule(ship, grouped[ship]))
	}
	return out
}

// Schedule returns the reconciled itinerary of one ship. Ship matching uses the
// canonical (upper-case) name.
func (e *Engine) Schedule(rows []domain.ScheduleRow, ship string) (domain.ShipSchedule, bool) {
	key := NormalizeShip(ship)
	group, ok := GroupRows(rows)[key]
	if !ok {
		return domain.ShipSchedule{}, false
	}
	return e.schedule(key, group), true
}

func (e *Engine) schedule(ship string, rows []domain.ScheduleRow) domain.ShipSchedule {
	ordered := SortByScheduleDate(rows, e.zones)
	stops := SortByArrival(Reconcile(ordered, e.zones))
	return domain.ShipSchedule{Ship: ship, Stops: stops}
}

// ComputeStatuses classifies every ship at now. The result is ordered by ship name.
func (e *Engine) ComputeStatuses(ctx context.Context, rows []domain.ScheduleRow, now time.Time) []domain.StatusRecord {
	defer obs.Time(ctx, "engine.ComputeStatuses")(nil)

	schedules := e.Schedules(rows)
	out := make([]domain.StatusRecord, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, e.Status(s, now))
	}
	return out
}

// ShipStatus classifies a single ship at now.
func (e *Engine) ShipStatus(ctx context.Context, rows []domain.ScheduleRow, ship string, now time.Time) (domain.StatusRecord, bool) {
	defer obs.Time(ctx, "engine.ShipStatus")(nil)

	s, ok := e.Schedule(rows, ship)
	if !ok {
		return domain.StatusRecord{}, false
	}
	return e.Status(s, now), true
}

// Status classifies an already reconciled schedule, expressing now in the
// ship's reporting zone.
func (e *Engine) Status(s domain.ShipSchedule, now time.Time) domain.StatusRecord {
	loc, _ := e.zones.Location(e.reportingZone(s, now))
	return Classify(s.Ship, s.Stops, now.In(loc))
}

// reportingZone picks the configured ship zone, else the zone of the latest
// stop the ship has reached, else the first stop's zone, else UTC.
func (e *Engine) reportingZone(s domain.ShipSchedule, now time.Time) string {
	if z, ok := e.zones.ShipZone(s.Ship); ok {
		return z
	}

	zone := ""
	for _, stop := range s.Stops {
		arr, ok := stop.Arrival.Get()
		if !ok {
			break
		}
		if zone == "" || !arr.After(now) {
			zone = stop.Zone
		}
		if arr.After(now) {
			break
		}
	}
	if zone == "" {
		return DefaultZone
	}
	return zone
}
