package auditlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded against appointments and reminders.
const (
	ActionAppointmentCreate       = "appointment.create"
	ActionAppointmentUpdate       = "appointment.update"
	ActionAppointmentReschedule   = "appointment.reschedule"
	ActionAppointmentCancel       = "appointment.cancel"
	ActionAppointmentComplete     = "appointment.complete"
	ActionAppointmentConfirmed    = "appointment.confirmed"
	ActionAppointmentDelete       = "appointment.delete"
	ActionReminderUpdated         = "appointment.reminder_updated"
	ActionReminderDisabledAuto    = "appointment.reminder_disabled_auto"
	ActionReminderSimulated       = "appointment.reminder_simulated"
	ActionReminderRun             = "reminder.run"
	ActionPatientCreate           = "patient.create"
	ActionPatientUpdate           = "patient.update"
	ActionPatientDelete           = "patient.delete"
	ActionUserLogin               = "user.login"
	ActionUserProfileUpdate       = "user.profile_update"
)

// Entry maps to the audit_logs table. Metadata is stored as truncated JSON
// so that a single oversized payload cannot bloat the log.
type Entry struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	OwnerUserID  uuid.UUID  `db:"owner_user_id" json:"-"`
	Action       string     `db:"action" json:"action"`
	EntityType   string     `db:"entity_type" json:"entity_type"`
	EntityID     *uuid.UUID `db:"entity_id" json:"entity_id,omitempty"`
	Summary      string     `db:"summary" json:"summary"`
	MetadataJSON *string    `db:"metadata" json:"-"`
	IPAddress    string     `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent    string     `db:"user_agent" json:"user_agent,omitempty"`
	RequestID    string     `db:"request_id" json:"request_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// MarshalJSON renders the stored metadata string back into a JSON object.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	out := struct {
		*alias
		Metadata json.RawMessage `json:"metadata,omitempty"`
	}{alias: (*alias)(e)}

	if e.MetadataJSON != nil && json.Valid([]byte(*e.MetadataJSON)) {
		out.Metadata = json.RawMessage(*e.MetadataJSON)
	}
	return json.Marshal(out)
}

// ListFilter narrows the audit log listing.
type ListFilter struct {
	EntityType string
	Action     string
	EntityID   *uuid.UUID
	Since      *time.Time
}
