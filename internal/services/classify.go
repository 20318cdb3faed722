package services

import (
	"cruise-status-service/internal/domain"
	"time"
)

// Maximum number of upcoming ports reported.
const NextPortsLimit = 3

// Classify derives the status of a ship at now from stops ordered by arrival.
//
// States are evaluated in order and the first match wins: at port, in transit,
// completed. A ship without any resolved arrival is Unknown. The record is
// expressed in now's location.
func Classify(ship string, stops []domain.Stop, now time.Time) domain.StatusRecord {
	lastResolved := -1
	for i, s := range stops {
		if s.Arrival.IsResolved() {
			lastResolved = i
		}
	}

	if lastResolved < 0 {
		return domain.StatusRecord{
			Ship:    ship,
			Tag:     domain.StatusUnknown,
			Display: "Unknown",
			Zone:    now.Location().String(),
			AsOf:    now,
		}
	}

	for i, s := range stops {
		arr, ok := s.Arrival.Get()
		if !ok {
			continue
		}
		dep, _ := s.Departure.Get()
		if now.Before(arr) || now.After(dep) {
			continue
		}

		remaining := dep.Sub(now)
		return domain.StatusRecord{
			Ship:         ship,
			Tag:          domain.StatusAtPort,
			Display:      "At Port (Departs in " + FormatETA(remaining) + ")",
			CurrentPort:  s.Port(),
			PreviousPort: portAt(stops, i-1),
			NextPorts:    portsFrom(stops, i+1),
			Remaining:    remaining,
			Zone:         now.Location().String(),
			AsOf:         now,
		}
	}

	for j, s := range stops {
		arr, ok := s.Arrival.Get()
		if !ok || !arr.After(now) {
			continue
		}

		previous := portAt(stops, j-1)
		next := s.Port()
		remaining := arr.Sub(now)
		rec := domain.StatusRecord{
			Ship:         ship,
			Tag:          domain.StatusInTransit,
			Display:      "In Transit (ETA: " + FormatETA(remaining) + ")",
			CurrentPort:  transitLabel(previous, next),
			PreviousPort: previous,
			NextPorts:    portsFrom(stops, j),
			Remaining:    remaining,
			Zone:         now.Location().String(),
			AsOf:         now,
		}
		// Leaving and re-entering the same port between two scheduled calls.
		if previous != "" && previous == next {
			rec.Display = "At Port (Holding)"
			rec.Holding = true
		}
		return rec
	}

	return domain.StatusRecord{
		Ship:         ship,
		Tag:          domain.StatusCompleted,
		Display:      "Completed",
		PreviousPort: stops[lastResolved].Port(),
		Zone:         now.Location().String(),
		AsOf:         now,
	}
}

func transitLabel(previous, next string) string {
	if previous == "" || previous == next {
		return next
	}
	return previous + domain.TransitArrow + next
}

func portAt(stops []domain.Stop, i int) string {
	if i < 0 || i >= len(stops) {
		return ""
	}
	return stops[i].Port()
}

func portsFrom(stops []domain.Stop, start int) []string {
	if start >= len(stops) {
		return nil
	}
	end := min(start+NextPortsLimit, len(stops))
	out := make([]string, 0, end-start)
	for _, s := range stops[start:end] {
		out = append(out, s.Port())
	}
	return out
}
