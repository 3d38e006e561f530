// Package reminder delivers due appointment reminders, both on a
// background interval and on demand through an operator endpoint.
package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Candidate is one appointment due for a reminder, joined with the
// patient contact fields needed to render the message.
type Candidate struct {
	AppointmentID uuid.UUID
	OwnerUserID   uuid.UUID
	PatientName   string
	PatientEmail  string
	StartAt       time.Time
	EndAt         *time.Time
	DoctorName    string
	Department    *string
	Notes         *string
}

// Repository selects due reminders and records deliveries.
type Repository interface {
	// ListDue returns confirmed, not-yet-reminded appointments whose
	// start falls inside [windowStart, windowEnd] and whose patient has
	// an email address on file.
	ListDue(ctx context.Context, windowStart, windowEnd time.Time) ([]*Candidate, error)
	// MarkSent stamps reminder_sent_at, suppressing re-sends for the
	// occurrence.
	MarkSent(ctx context.Context, appointmentID uuid.UUID, sentAt time.Time) error
}
