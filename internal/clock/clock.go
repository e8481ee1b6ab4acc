// Package clock provides the time source capability for the scheduling pipeline.
// All components that need "now" receive a Clock instead of calling time.Now
// directly, so demo deployments and tests can pin the reference instant.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock pinned to a single instant.
type Fixed struct {
	Instant time.Time
}

// NewFixed creates a Clock pinned to the given instant.
func NewFixed(instant time.Time) Fixed {
	return Fixed{Instant: instant}
}

// Now returns the pinned instant.
func (f Fixed) Now() time.Time {
	return f.Instant
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var (
	_ Clock = System{}
	_ Clock = Fixed{}
)
