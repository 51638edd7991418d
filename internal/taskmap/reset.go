// ABOUTME: Daily reset window for taskmaps
// ABOUTME: Clears every stop once local midnight has passed since the last reset

package taskmap

import "time"

// civilDate truncates t to its calendar day in its own location.
func civilDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// ResetOld resets every stop if the local date is later than the date of the
// last reset, and reports whether it did. Safe to call on any interval.
func (m *Taskmap) ResetOld() bool {
	now := m.Now()
	if !civilDate(now).After(civilDate(m.LastReset())) {
		return false
	}
	m.resetStops()
	m.lastReset = now
	return true
}

// ResetAll resets every stop regardless of date.
func (m *Taskmap) ResetAll() {
	m.resetStops()
	m.lastReset = m.Now()
}

func (m *Taskmap) resetStops() {
	for _, stop := range m.stops {
		stop.Reset()
	}
}
