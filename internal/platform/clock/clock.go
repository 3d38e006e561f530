// Package clock abstracts wall-clock time so that services depending on
// "now" (reminder eligibility, sweep windows) can be tested with a fixed
// instant.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// System is the wall clock. Times are always UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a Clock pinned to a single instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At returns a Fixed clock at the given instant.
func At(t time.Time) Fixed { return Fixed{T: t} }
