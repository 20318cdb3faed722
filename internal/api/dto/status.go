package dto

import (
	"cruise-status-service/internal/domain"
	"time"
)

type StatusResponse struct {
	Ship             string    `json:"ship"`
	Status           string    `json:"status"`
	Display          string    `json:"display"`
	CurrentPort      string    `json:"current_port"`
	PreviousPort     string    `json:"previous_port"`
	NextPorts        []string  `json:"next_ports"`
	Holding          bool      `json:"holding"`
	RemainingMinutes int64     `json:"remaining_minutes"`
	Zone             string    `json:"zone"`
	AsOf             time.Time `json:"as_of"`
}

type ListStatusResponse struct {
	Statuses []StatusResponse `json:"statuses"`
}

type ScheduleStopResponse struct {
	Port      string     `json:"port"`
	Country   string     `json:"country,omitempty"`
	Date      string     `json:"date"`
	Zone      string     `json:"zone"`
	Arrival   *time.Time `json:"arrival"`
	Departure *time.Time `json:"departure"`
}

type ScheduleResponse struct {
	Ship  string                 `json:"ship"`
	Stops []ScheduleStopResponse `json:"stops"`
}

func NewStatusResponse(r domain.StatusRecord) StatusResponse {
	next := r.NextPorts
	if next == nil {
		next = []string{}
	}
	return StatusResponse{
		Ship:             r.Ship,
		Status:           string(r.Tag),
		Display:          r.Display,
		CurrentPort:      r.CurrentPort,
		PreviousPort:     r.PreviousPort,
		NextPorts:        next,
		Holding:          r.Holding,
		RemainingMinutes: int64(r.Remaining.Round(time.Minute) / time.Minute),
		Zone:             r.Zone,
		AsOf:             r.AsOf,
	}
}

// Unresolved instants are rendered as null.
func NewScheduleResponse(s domain.ShipSchedule) ScheduleResponse {
	res := ScheduleResponse{Ship: s.Ship, Stops: make([]ScheduleStopResponse, 0, len(s.Stops))}
	for _, stop := range s.Stops {
		res.Stops = append(res.Stops, ScheduleStopResponse{
			Port:      stop.Port(),
			Country:   stop.Row.Country,
			Date:      stop.Row.Date,
			Zone:      stop.Zone,
			Arrival:   instantPtr(stop.Arrival),
			Departure: instantPtr(stop.Departure),
		})
	}
	return res
}

func instantPtr(i domain.Instant) *time.Time {
	t, ok := i.Get()
	if !ok {
		return nil
	}
	return &t
}
