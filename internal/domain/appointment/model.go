// Package appointment implements the scheduling core: appointment
// lifecycle, overlap protection, and per-appointment reminder state.
package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the appointment lifecycle state. The three schedulable
// states participate in overlap checks; completed and cancelled do not.
type Status string

const (
	StatusUnconfirmed Status = "unconfirmed"
	StatusConfirmed   Status = "confirmed"
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnconfirmed, StatusConfirmed, StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Schedulable reports whether the status blocks other appointments from
// occupying the same time slot.
func (s Status) Schedulable() bool {
	switch s {
	case StatusUnconfirmed, StatusConfirmed, StatusScheduled:
		return true
	}
	return false
}

type Appointment struct {
	ID                         uuid.UUID  `json:"id"`
	OwnerUserID                uuid.UUID  `json:"-"`
	PatientID                  uuid.UUID  `json:"patient_id"`
	DoctorName                 string     `json:"doctor_name"`
	Department                 *string    `json:"department"`
	StartAt                    time.Time  `json:"start_at"`
	EndAt                      *time.Time `json:"end_at"`
	Status                     Status     `json:"status"`
	Notes                      *string    `json:"notes"`
	ReminderEmailEnabled       bool       `json:"reminder_email_enabled"`
	ReminderSMSEnabled         bool       `json:"reminder_sms_enabled"`
	ReminderEmailMinutesBefore *int       `json:"reminder_email_minutes_before"`
	ReminderSMSMinutesBefore   *int       `json:"reminder_sms_minutes_before"`
	ReminderNextRunAt          *time.Time `json:"reminder_next_run_at"`
	ReminderSentAt             *time.Time `json:"reminder_sent_at"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"updated_at"`
}

// Delta is a partial update. Nil fields are left untouched; ClearEndAt
// drops the explicit end time so the default duration applies again.
type Delta struct {
	DoctorName                 *string    `json:"doctor_name"`
	Department                 *string    `json:"department"`
	StartAt                    *time.Time `json:"start_at"`
	EndAt                      *time.Time `json:"end_at"`
	ClearEndAt                 bool       `json:"clear_end_at,omitempty"`
	Status                     *Status    `json:"status"`
	Notes                      *string    `json:"notes"`
	ReminderEmailEnabled       *bool      `json:"reminder_email_enabled"`
	ReminderSMSEnabled         *bool      `json:"reminder_sms_enabled"`
	ReminderEmailMinutesBefore *int       `json:"reminder_email_minutes_before"`
	ReminderSMSMinutesBefore   *int       `json:"reminder_sms_minutes_before"`
}

// touchesReminders reports whether the caller explicitly set any
// reminder configuration field.
func (d Delta) touchesReminders() bool {
	return d.ReminderEmailEnabled != nil || d.ReminderSMSEnabled != nil ||
		d.ReminderEmailMinutesBefore != nil || d.ReminderSMSMinutesBefore != nil
}

// snapshot captures the fields an update can change, for diffing and
// for rendering "previous details" in notification emails.
type snapshot struct {
	StartAt                    time.Time
	EndAt                      *time.Time
	DoctorName                 string
	Department                 *string
	Notes                      *string
	Status                     Status
	ReminderEmailEnabled       bool
	ReminderSMSEnabled         bool
	ReminderEmailMinutesBefore *int
	ReminderSMSMinutesBefore   *int
	ReminderNextRunAt          *time.Time
}

func takeSnapshot(a *Appointment) snapshot {
	return snapshot{
		StartAt:                    a.StartAt,
		EndAt:                      a.EndAt,
		DoctorName:                 a.DoctorName,
		Department:                 a.Department,
		Notes:                      a.Notes,
		Status:                     a.Status,
		ReminderEmailEnabled:       a.ReminderEmailEnabled,
		ReminderSMSEnabled:         a.ReminderSMSEnabled,
		ReminderEmailMinutesBefore: a.ReminderEmailMinutesBefore,
		ReminderSMSMinutesBefore:   a.ReminderSMSMinutesBefore,
		ReminderNextRunAt:          a.ReminderNextRunAt,
	}
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// diff returns the audit metadata for an update: the list of changed
// field names and an old/new pair per changed field.
func (s snapshot) diff(a *Appointment) (changedFields []interface{}, changes map[string]interface{}) {
	changes = map[string]interface{}{}
	note := func(field string, old, new interface{}) {
		changes[field] = map[string]interface{}{"old": old, "new": new}
		changedFields = append(changedFields, field)
	}
	strVal := func(p *string) interface{} {
		if p == nil {
			return nil
		}
		return *p
	}
	intVal := func(p *int) interface{} {
		if p == nil {
			return nil
		}
		return *p
	}
	timeVal := func(p *time.Time) interface{} {
		if p == nil {
			return nil
		}
		return p.Format(time.RFC3339)
	}

	changedFields = []interface{}{}
	if !s.StartAt.Equal(a.StartAt) {
		note("start_at", s.StartAt.Format(time.RFC3339), a.StartAt.Format(time.RFC3339))
	}
	if !timePtrEqual(s.EndAt, a.EndAt) {
		note("end_at", timeVal(s.EndAt), timeVal(a.EndAt))
	}
	if s.DoctorName != a.DoctorName {
		note("doctor_name", s.DoctorName, a.DoctorName)
	}
	if !strPtrEqual(s.Department, a.Department) {
		note("department", strVal(s.Department), strVal(a.Department))
	}
	if !strPtrEqual(s.Notes, a.Notes) {
		note("notes", strVal(s.Notes), strVal(a.Notes))
	}
	if s.Status != a.Status {
		note("status", string(s.Status), string(a.Status))
	}
	if s.ReminderEmailEnabled != a.ReminderEmailEnabled {
		note("reminder_email_enabled", s.ReminderEmailEnabled, a.ReminderEmailEnabled)
	}
	if s.ReminderSMSEnabled != a.ReminderSMSEnabled {
		note("reminder_sms_enabled", s.ReminderSMSEnabled, a.ReminderSMSEnabled)
	}
	if !intPtrEqual(s.ReminderEmailMinutesBefore, a.ReminderEmailMinutesBefore) {
		note("reminder_email_minutes_before", intVal(s.ReminderEmailMinutesBefore), intVal(a.ReminderEmailMinutesBefore))
	}
	if !intPtrEqual(s.ReminderSMSMinutesBefore, a.ReminderSMSMinutesBefore) {
		note("reminder_sms_minutes_before", intVal(s.ReminderSMSMinutesBefore), intVal(a.ReminderSMSMinutesBefore))
	}
	if !timePtrEqual(s.ReminderNextRunAt, a.ReminderNextRunAt) {
		note("reminder_next_run_at", timeVal(s.ReminderNextRunAt), timeVal(a.ReminderNextRunAt))
	}
	return changedFields, changes
}

// visibleChange reports whether any patient-facing detail changed, which
// decides whether an update email goes out.
func (s snapshot) visibleChange(a *Appointment) bool {
	return !s.StartAt.Equal(a.StartAt) ||
		!timePtrEqual(s.EndAt, a.EndAt) ||
		s.DoctorName != a.DoctorName ||
		!strPtrEqual(s.Department, a.Department) ||
		!strPtrEqual(s.Notes, a.Notes) ||
		s.Status != a.Status
}

// changedReminderSettings lists the reminder configuration fields whose
// value differs from the snapshot.
func (s snapshot) changedReminderSettings(a *Appointment) []string {
	var changed []string
	if s.ReminderEmailEnabled != a.ReminderEmailEnabled {
		changed = append(changed, "reminder_email_enabled")
	}
	if s.ReminderSMSEnabled != a.ReminderSMSEnabled {
		changed = append(changed, "reminder_sms_enabled")
	}
	if !intPtrEqual(s.ReminderEmailMinutesBefore, a.ReminderEmailMinutesBefore) {
		changed = append(changed, "reminder_email_minutes_before")
	}
	if !intPtrEqual(s.ReminderSMSMinutesBefore, a.ReminderSMSMinutesBefore) {
		changed = append(changed, "reminder_sms_minutes_before")
	}
	return changed
}
