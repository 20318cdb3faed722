package services

import (
	"context"
	"cruise-status-service/internal/domain"
	"reflect"
	"testing"
	"time"
)

func itineraryRows() []domain.ScheduleRow {
	return []domain.ScheduleRow{
		// Deliberately out of order and mixed case.
		{Ship: "Wind Spirit", Port: "Valletta", Country: "Malta", Date: "2026-03-11", Arrival: "2026-03-11 08:00:00", Departure: "2026-03-11 17:00:00"},
		{Ship: "WIND SPIRIT", Port: "Nice", Country: "France", Date: "2026-03-10", Arrival: "2026-03-10T08:00:00+01:00", Departure: "2026-03-10T18:00:00+01:00"},
		{Ship: "wind spirit", Port: "Papeete", Date: "2026-03-12"},
		{Ship: "Star Pride", Port: "Lisbon", Date: "2026-03-01", Arrival: "2026-03-01 08:00:00", Departure: "2026-03-01 18:00:00"},
		{Ship: "Ghost", Port: "Atlantis", Date: "someday"},
	}
}

func TestEngineComputeStatuses(t *testing.T) {
	e := NewEngine(testZones())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	statuses := e.ComputeStatuses(context.Background(), itineraryRows(), now)

	if len(statuses) != 3 {
		t.Fatalf("expected 3 ships, got %d", len(statuses))
	}

	var ships []string
	for _, s := range statuses {
		ships = append(ships, s.Ship)
	}
	if want := []string{"GHOST", "STAR PRIDE", "WIND SPIRIT"}; !reflect.DeepEqual(ships, want) {
		t.Fatalf("ships = %v, want %v", ships, want)
	}

	ghost, pride, wind := statuses[0], statuses[1], statuses[2]

	if ghost.Tag != domain.StatusUnknown {
		t.Errorf("GHOST tag = %s, want Unknown", ghost.Tag)
	}
	if ghost.Zone != "UTC" {
		t.Errorf("GHOST zone = %q, want UTC", ghost.Zone)
	}

	if pride.Tag != domain.StatusCompleted || pride.PreviousPort != "Lisbon" {
		t.Errorf("STAR PRIDE = %s previous=%q, want Completed Lisbon", pride.Tag, pride.PreviousPort)
	}
	if pride.Zone != "Etc/UTC" {
		t.Errorf("STAR PRIDE zone = %q, want Etc/UTC", pride.Zone)
	}

	if wind.Tag != domain.StatusAtPort || wind.CurrentPort != "Nice" {
		t.Errorf("WIND SPIRIT = %s current=%q, want AtPort Nice", wind.Tag, wind.CurrentPort)
	}
	if !reflect.DeepEqual(wind.NextPorts, []string{"Valletta", "Papeete"}) {
		t.Errorf("WIND SPIRIT next = %v", wind.NextPorts)
	}
	// Nice departs 17:00Z; now is 12:00Z.
	if wind.Display != "At Port (Departs in 5h 0m)" {
		t.Errorf("WIND SPIRIT display = %q", wind.Display)
	}
	if wind.Zone != "Europe/Berlin" {
		t.Errorf("WIND SPIRIT zone = %q, want Europe/Berlin", wind.Zone)
	}
}

func TestEngineScheduleReconcilesAfterDateSort(t *testing.T) {
	e := NewEngine(testZones())

	sched, ok := e.Schedule(itineraryRows(), "wind SPIRIT")
	if !ok {
		t.Fatalf("schedule for wind spirit not found")
	}
	if sched.Ship != "WIND SPIRIT" {
		t.Errorf("ship = %q", sched.Ship)
	}

	var ports []string
	for _, s := range sched.Stops {
		ports = append(ports, s.Port())
	}
	if want := []string{"Nice", "Valletta", "Papeete"}; !reflect.DeepEqual(ports, want) {
		t.Fatalf("ports = %v, want %v", ports, want)
	}

	// Papeete has no timestamps and borrows Valletta's departure.
	malta, _ := time.LoadLocation("Europe/Malta")
	wantArr := time.Date(2026, 3, 11, 17, 0, 0, 0, malta)
	if got := mustTime(sched.Stops[2].Arrival); !got.Equal(wantArr) {
		t.Errorf("Papeete arrival = %v, want %v", got, wantArr)
	}
	if got := mustTime(sched.Stops[2].Departure); !got.Equal(wantArr.Add(12 * time.Hour)) {
		t.Errorf("Papeete departure = %v, want %v", got, wantArr.Add(12*time.Hour))
	}

	if _, ok := e.Schedule(itineraryRows(), "Queen Mary"); ok {
		t.Errorf("unexpected schedule for unknown ship")
	}
}

func TestEngineReSortsByResolvedArrival(t *testing.T) {
	e := NewEngine(testZones())
	rows := []domain.ScheduleRow{
		// Same schedule date, arrivals in reverse row order.
		{Ship: "X", Port: "Late", Date: "2026-03-10", Arrival: "2026-03-10 20:00:00", Departure: "2026-03-10 23:00:00"},
		{Ship: "X", Port: "Early", Date: "2026-03-10", Arrival: "2026-03-10 06:00:00", Departure: "2026-03-10 10:00:00"},
	}

	sched, _ := e.Schedule(rows, "X")
	if sched.Stops[0].Port() != "Early" || sched.Stops[1].Port() != "Late" {
		t.Errorf("stops not ordered by arrival: %s, %s", sched.Stops[0].Port(), sched.Stops[1].Port())
	}
}

func TestEngineShipStatus(t *testing.T) {
	e := NewEngine(testZones())
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

	rec, ok := e.ShipStatus(context.Background(), itineraryRows(), "Wind Spirit", now)
	if !ok {
		t.Fatalf("ship status not found")
	}
	if rec.Tag != domain.StatusInTransit || rec.CurrentPort != "Nice ➜ Valletta" {
		t.Errorf("got %s %q, want InTransit Nice ➜ Valletta", rec.Tag, rec.CurrentPort)
	}

	if _, ok := e.ShipStatus(context.Background(), itineraryRows(), "Nobody", now); ok {
		t.Errorf("unexpected status for unknown ship")
	}
}

func TestEngineReportingZoneFollowsStops(t *testing.T) {
	e := NewEngine(testZones())
	rows := []domain.ScheduleRow{
		{Ship: "Roamer", Port: "Nice", Date: "2026-03-10", Arrival: "2026-03-10 08:00:00", Departure: "2026-03-10 18:00:00"},
		{Ship: "Roamer", Port: "Papeete", Date: "2026-03-20", Arrival: "2026-03-20 08:00:00", Departure: "2026-03-20 18:00:00"},
	}

	before := e.ComputeStatuses(context.Background(), rows, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))[0]
	if before.Zone != "Europe/Paris" {
		t.Errorf("zone before first call = %q, want Europe/Paris", before.Zone)
	}

	later := e.ComputeStatuses(context.Background(), rows, time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC))[0]
	if later.Zone != "Pacific/Tahiti" {
		t.Errorf("zone after last call = %q, want Pacific/Tahiti", later.Zone)
	}
}

func TestEngineEmptyInput(t *testing.T) {
	e := NewEngine(testZones())
	statuses := e.ComputeStatuses(context.Background(), nil, time.Now())
	if len(statuses) != 0 {
		t.Errorf("expected no statuses, got %d", len(statuses))
	}
}
