package appointment

import (
	"testing"
	"time"
)

func TestNormalizeDoctorName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Dr. Chen", "Dr. Chen"},
		{"  Dr. Chen  ", "Dr. Chen"},
		{"", "TBD"},
		{"   ", "TBD"},
	}
	for _, tc := range cases {
		if got := NormalizeDoctorName(tc.in); got != tc.want {
			t.Errorf("NormalizeDoctorName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveEnd(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	explicit := start.Add(45 * time.Minute)

	if got := ResolveEnd(start, &explicit, 30*time.Minute); !got.Equal(explicit) {
		t.Errorf("explicit end: got %v, want %v", got, explicit)
	}
	if got := ResolveEnd(start, nil, 30*time.Minute); !got.Equal(start.Add(30 * time.Minute)) {
		t.Errorf("defaulted end: got %v, want %v", got, start.Add(30*time.Minute))
	}
}

func TestValidateRange(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	after := start.Add(time.Minute)
	if err := ValidateRange(start, &after); err != nil {
		t.Errorf("end after start: unexpected error %v", err)
	}
	if err := ValidateRange(start, nil); err != nil {
		t.Errorf("no end: unexpected error %v", err)
	}
	if err := ValidateRange(start, &start); err != ErrInvalidTimeRange {
		t.Errorf("end == start: got %v, want ErrInvalidTimeRange", err)
	}
	before := start.Add(-time.Minute)
	if err := ValidateRange(start, &before); err != ErrInvalidTimeRange {
		t.Errorf("end before start: got %v, want ErrInvalidTimeRange", err)
	}
	if err := ValidateRange(time.Time{}, nil); err != ErrMissingStart {
		t.Errorf("zero start: got %v, want ErrMissingStart", err)
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2030, 1, 1, h, m, 0, 0, time.UTC)
	}
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(9, 0), at(9, 30), at(9, 0), at(9, 30), true},
		{"partial overlap", at(9, 15), at(9, 45), at(9, 0), at(9, 30), true},
		{"contained", at(9, 10), at(9, 20), at(9, 0), at(9, 30), true},
		{"touching edge after", at(9, 30), at(10, 0), at(9, 0), at(9, 30), false},
		{"touching edge before", at(8, 30), at(9, 0), at(9, 0), at(9, 30), false},
		{"disjoint", at(11, 0), at(11, 30), at(9, 0), at(9, 30), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}
