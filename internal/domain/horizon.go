package domain

import "time"

// Clock abstracts the current time so the horizon can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// HorizonDays is the planning window length, today included.
const HorizonDays = 14

// Horizon is the inclusive planning window for the fixed demand channels.
// Manual routes are planner decisions and ignore it.
type Horizon struct {
	Start time.Time
	End   time.Time
}

// NewHorizon builds the window starting at now's local midnight and ending
// HorizonDays-1 days later.
func NewHorizon(now time.Time) Horizon {
	start := Midnight(now)
	return Horizon{Start: start, End: start.AddDate(0, 0, HorizonDays-1)}
}

// Contains reports whether the calendar day of t falls inside the window.
func (h Horizon) Contains(t time.Time) bool {
	d := Midnight(t.In(h.Start.Location()))
	return !d.Before(h.Start) && !d.After(h.End)
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
