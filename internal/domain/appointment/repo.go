package appointment

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for appointments. All lookups
// are scoped to an owner; rows belonging to other owners behave as
// nonexistent.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	ListByPatient(ctx context.Context, ownerID, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
	// ListSchedulable returns the owner's appointments in a schedulable
	// status, excluding excludeID when it is non-nil-valued.
	ListSchedulable(ctx context.Context, ownerID, excludeID uuid.UUID) ([]*Appointment, error)
}
