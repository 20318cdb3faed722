package domain

import "time"

// Instant is either a resolved point in time or explicitly unresolved.
// The zero value is unresolved.
type Instant struct {
	t  time.Time
	ok bool
}

func Resolved(t time.Time) Instant { return Instant{t: t, ok: true} }

func Unresolved() Instant { return Instant{} }

// Return the underlying time and whether it was resolved.
func (i Instant) Get() (time.Time, bool) { return i.t, i.ok }

func (i Instant) IsResolved() bool { return i.ok }

// Return the instant when resolved, otherwise fallback.
func (i Instant) Or(fallback Instant) Instant {
	if i.ok {
		return i
	}
	return fallback
}

// Return a resolved instant shifted by d. Unresolved stays unresolved.
func (i Instant) Add(d time.Duration) Instant {
	if !i.ok {
		return i
	}
	return Resolved(i.t.Add(d))
}

// Return the instant expressed in loc. Unresolved stays unresolved.
func (i Instant) In(loc *time.Location) Instant {
	if !i.ok || loc == nil {
		return i
	}
	return Resolved(i.t.In(loc))
}
