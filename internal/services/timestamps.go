package services

import (
	"cruise-status-service/internal/domain"
	"strconv"
	"strings"
	"time"
)

// Layouts without an offset are read as wall-clock time in the stop's zone.
// The canonical input is RFC 3339; the rest exist for legacy feeds.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var offsetLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// ParseTimestamp parses raw strictly. Empty or malformed input is Unresolved.
// Instants carrying an offset are converted into loc.
func ParseTimestamp(raw string, loc *time.Location) domain.Instant {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Unresolved()
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Resolved(t.In(loc))
		}
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return domain.Resolved(t)
		}
	}

	return domain.Unresolved()
}

// ScheduleMidnight returns midnight of the schedule date in loc.
func ScheduleMidnight(raw string, loc *time.Location) domain.Instant {
	if loc == nil {
		loc = time.UTC
	}
	t, ok := ParseTimestamp(raw, loc).Get()
	if !ok {
		return domain.Unresolved()
	}
	return domain.Resolved(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc))
}

// FormatETA renders d rounded to the minute as "{h}h {m}m". Negative values clamp to zero.
func FormatETA(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return strconv.Itoa(h) + "h " + strconv.Itoa(m) + "m"
}
