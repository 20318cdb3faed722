package services

import (
	"cruise-status-service/internal/domain"
	"time"
)

var day1 = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func testZones() *ZoneTableResolver {
	return NewZoneTableResolver(domain.ZoneTables{
		Ports: map[string]string{
			"Nice":     "Europe/Paris",
			"Papeete":  "Pacific/Tahiti",
			"Valletta": "Europe/Malta",
		},
		Ships: map[string]string{
			"Wind Spirit": "Europe/Berlin",
			"STAR PRIDE":  "Etc/UTC",
		},
	})
}

// utcStop builds a stop whose instants are hours offsets from day1 (UTC).
func utcStop(port string, arrHours, depHours int) domain.Stop {
	return domain.Stop{
		Row:       domain.ScheduleRow{Port: port},
		Zone:      "UTC",
		Location:  time.UTC,
		Arrival:   domain.Resolved(day1.Add(time.Duration(arrHours) * time.Hour)),
		Departure: domain.Resolved(day1.Add(time.Duration(depHours) * time.Hour)),
	}
}

func at(hours int) time.Time {
	return day1.Add(time.Duration(hours) * time.Hour)
}

func mustTime(t domain.Instant) time.Time {
	v, ok := t.Get()
	if !ok {
		panic("instant is unresolved")
	}
	return v
}
