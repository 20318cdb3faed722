package domain

import "time"

type StatusTag string

const (
	StatusAtPort    StatusTag = "AtPort"
	StatusInTransit StatusTag = "InTransit"
	StatusCompleted StatusTag = "Completed"
	StatusUnknown   StatusTag = "Unknown"
)

// Separator used in transit labels ("A ➜ B").
const TransitArrow = " ➜ "

// Represents the current travel status of a ship relative to a reference instant.
// A StatusRecord is a projection computed on demand; it is never stored and
// never modified after construction.
type StatusRecord struct {
	Ship         string
	Tag          StatusTag
	Display      string
	CurrentPort  string
	PreviousPort string
	NextPorts    []string
	Holding      bool
	// Time left until departure (AtPort) or arrival (InTransit).
	Remaining time.Duration
	Zone      string
	AsOf      time.Time
}
