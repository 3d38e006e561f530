package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository exposes the aggregate queries the analytics view is built
// from. All time ranges are half-open: [from, to).
type Repository interface {
	CountPatients(ctx context.Context, ownerID uuid.UUID) (int, error)
	CountPatientsCreatedBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error)
	CountAppointmentsBetween(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (int, error)
	// AppointmentCountsByDay groups appointment starts by calendar day,
	// keyed YYYY-MM-DD.
	AppointmentCountsByDay(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (map[string]int, error)
	PatientCreationTimes(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]time.Time, error)
	AppointmentCountsByStatus(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (map[string]int, error)
}
