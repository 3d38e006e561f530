package appointment

import (
	"strings"
	"time"
)

// DefaultDoctorName stands in when no doctor has been assigned yet.
const DefaultDoctorName = "TBD"

// NormalizeDoctorName trims the given name and substitutes the default
// placeholder for blank values.
func NormalizeDoctorName(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return DefaultDoctorName
}

// ResolveEnd returns the effective end of an appointment: the explicit
// end when present, otherwise start plus the default duration.
func ResolveEnd(start time.Time, end *time.Time, defaultDuration time.Duration) time.Time {
	if end != nil {
		return *end
	}
	return start.Add(defaultDuration)
}

// ValidateRange fails when the start time is missing or when an
// explicit end time is not strictly after the start time.
func ValidateRange(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return ErrMissingStart
	}
	if end != nil && !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}

// overlaps reports whether two half-open [start, end) intervals
// intersect. Touching edges do not count as overlap.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
