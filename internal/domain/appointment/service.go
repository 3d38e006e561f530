package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/auditlog"
	"github.com/meditrack/meditrack/internal/domain/patient"
	"github.com/meditrack/meditrack/internal/platform/clock"
	"github.com/meditrack/meditrack/internal/platform/mail"
)

// ClinicNameResolver supplies the clinic display name used in patient
// emails for a given owner.
type ClinicNameResolver interface {
	ClinicName(ctx context.Context, id uuid.UUID) string
}

type Service struct {
	repo            Repository
	patients        patient.Repository
	clinics         ClinicNameResolver
	mailer          mail.Mailer
	audit           *auditlog.Recorder
	clock           clock.Clock
	defaultDuration time.Duration
	logger          zerolog.Logger
}

func NewService(
	repo Repository,
	patients patient.Repository,
	clinics ClinicNameResolver,
	mailer mail.Mailer,
	audit *auditlog.Recorder,
	clk clock.Clock,
	defaultDuration time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:            repo,
		patients:        patients,
		clinics:         clinics,
		mailer:          mailer,
		audit:           audit,
		clock:           clk,
		defaultDuration: defaultDuration,
		logger:          logger,
	}
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

// ListByPatient verifies the patient belongs to the owner before
// listing, so a foreign patient id reads as not found.
func (s *Service) ListByPatient(ctx context.Context, ownerID, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if _, err := s.patients.GetByID(ctx, ownerID, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, ownerID, patientID, limit, offset)
}

// assertNoOverlap fails when the candidate [start, effectiveEnd)
// interval intersects any schedulable appointment of the same owner.
func (s *Service) assertNoOverlap(ctx context.Context, ownerID uuid.UUID, start time.Time, end *time.Time, excludeID uuid.UUID) error {
	candEnd := ResolveEnd(start, end, s.defaultDuration)
	existing, err := s.repo.ListSchedulable(ctx, ownerID, excludeID)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if overlaps(start, candEnd, e.StartAt, ResolveEnd(e.StartAt, e.EndAt, s.defaultDuration)) {
			return ErrOverlapConflict
		}
	}
	return nil
}

// Create books a new appointment. The referenced patient must belong to
// the same owner. Reminder state is reconciled with the initial status
// before persisting, and a confirmation email goes out when the
// appointment is booked directly into a confirmed or scheduled state.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, a *Appointment, meta auditlog.RequestMeta) (*Appointment, error) {
	pt, err := s.patients.GetByID(ctx, ownerID, a.PatientID)
	if err != nil {
		return nil, err
	}

	a.OwnerUserID = ownerID
	a.DoctorName = NormalizeDoctorName(a.DoctorName)
	if a.Status == "" {
		a.Status = StatusUnconfirmed
	}
	if !a.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := ValidateRange(a.StartAt, a.EndAt); err != nil {
		return nil, err
	}
	if a.Status.Schedulable() {
		if err := s.assertNoOverlap(ctx, ownerID, a.StartAt, a.EndAt, uuid.Nil); err != nil {
			return nil, err
		}
	}
	defaultLeadTimes(a)
	enforceReminderRules(a, false, s.clock.Now())

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionAppointmentCreate,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Created appointment",
		Metadata: map[string]interface{}{
			"patient_id": a.PatientID.String(),
			"start_at":   a.StartAt.Format(time.RFC3339),
			"end_at":     endAtValue(a.EndAt),
			"status":     string(a.Status),
		},
	})

	if a.Status == StatusConfirmed || a.Status == StatusScheduled {
		if err := s.sendConfirmation(ctx, a, pt); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Update applies a partial delta, reconciles reminder state, records an
// audit event whose action reflects what changed, and notifies the
// patient of cancellations, confirmations, and detail changes.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, delta Delta, meta auditlog.RequestMeta) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	snap := takeSnapshot(a)

	if delta.DoctorName != nil {
		a.DoctorName = NormalizeDoctorName(*delta.DoctorName)
	}
	if delta.Department != nil {
		a.Department = delta.Department
	}
	if delta.StartAt != nil {
		a.StartAt = *delta.StartAt
	}
	if delta.ClearEndAt {
		a.EndAt = nil
	} else if delta.EndAt != nil {
		a.EndAt = delta.EndAt
	}
	if delta.Status != nil {
		if !delta.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		a.Status = *delta.Status
	}
	if delta.Notes != nil {
		a.Notes = delta.Notes
	}
	if delta.ReminderEmailEnabled != nil {
		a.ReminderEmailEnabled = *delta.ReminderEmailEnabled
	}
	if delta.ReminderSMSEnabled != nil {
		a.ReminderSMSEnabled = *delta.ReminderSMSEnabled
	}
	if delta.ReminderEmailMinutesBefore != nil {
		a.ReminderEmailMinutesBefore = delta.ReminderEmailMinutesBefore
	}
	if delta.ReminderSMSMinutesBefore != nil {
		a.ReminderSMSMinutesBefore = delta.ReminderSMSMinutesBefore
	}

	if err := ValidateRange(a.StartAt, a.EndAt); err != nil {
		return nil, err
	}
	if a.Status.Schedulable() {
		if err := s.assertNoOverlap(ctx, ownerID, a.StartAt, a.EndAt, a.ID); err != nil {
			return nil, err
		}
	}

	previouslyEnabled := snap.ReminderEmailEnabled || snap.ReminderSMSEnabled
	userTouchedReminders := delta.touchesReminders()
	autoDisabled := enforceReminderRules(a, previouslyEnabled, s.clock.Now())

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	changedFields, changes := snap.diff(a)
	action, summary := deriveAction(snap, a)
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      action,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     summary,
		Metadata:    map[string]interface{}{"changed_fields": changedFields, "changes": changes},
	})

	if reminderChanged := snap.changedReminderSettings(a); userTouchedReminders && len(reminderChanged) > 0 && !autoDisabled {
		s.audit.Record(ctx, auditlog.Event{
			RequestMeta: meta,
			OwnerUserID: ownerID,
			Action:      auditlog.ActionReminderUpdated,
			EntityType:  "appointment",
			EntityID:    &a.ID,
			Summary:     "Updated reminder settings",
			Metadata:    map[string]interface{}{"changed_fields": toInterfaces(reminderChanged)},
		})
	}
	if autoDisabled && previouslyEnabled {
		s.recordAutoDisable(ctx, ownerID, a, meta)
	}

	pt, err := s.patients.GetByID(ctx, ownerID, a.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("patient lookup failed, skipping notification")
		return a, nil
	}
	switch {
	case a.Status == StatusCancelled && snap.Status != StatusCancelled:
		if err := s.sendCancellation(ctx, a, pt, &snap); err != nil {
			return nil, err
		}
	case a.Status == StatusConfirmed && snap.Status != StatusConfirmed:
		if err := s.sendConfirmation(ctx, a, pt); err != nil {
			return nil, err
		}
	case (a.Status == StatusConfirmed || a.Status == StatusScheduled) && snap.visibleChange(a):
		if err := s.sendUpdate(ctx, a, pt, snap); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Cancel is the dedicated shortcut: already-cancelled appointments are
// left untouched, everything else transitions to cancelled and the
// patient is notified regardless of what else changed.
func (s *Service) Cancel(ctx context.Context, ownerID, id uuid.UUID, meta auditlog.RequestMeta) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return a, nil
	}

	snap := takeSnapshot(a)
	previouslyEnabled := a.ReminderEmailEnabled || a.ReminderSMSEnabled
	a.Status = StatusCancelled
	autoDisabled := enforceReminderRules(a, previouslyEnabled, s.clock.Now())

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionAppointmentCancel,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Cancelled appointment",
		Metadata:    map[string]interface{}{"status": string(a.Status)},
	})
	if autoDisabled && previouslyEnabled {
		s.recordAutoDisable(ctx, ownerID, a, meta)
	}

	pt, err := s.patients.GetByID(ctx, ownerID, a.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("appointment_id", a.ID.String()).Msg("patient lookup failed, skipping notification")
		return a, nil
	}
	if err := s.sendCancellation(ctx, a, pt, &snap); err != nil {
		return nil, err
	}
	return a, nil
}

// Complete transitions to completed. No patient notification goes out.
func (s *Service) Complete(ctx context.Context, ownerID, id uuid.UUID, meta auditlog.RequestMeta) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCompleted {
		return a, nil
	}

	previouslyEnabled := a.ReminderEmailEnabled || a.ReminderSMSEnabled
	a.Status = StatusCompleted
	autoDisabled := enforceReminderRules(a, previouslyEnabled, s.clock.Now())

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionAppointmentComplete,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Completed appointment",
		Metadata:    map[string]interface{}{"status": string(a.Status)},
	})
	if autoDisabled && previouslyEnabled {
		s.recordAutoDisable(ctx, ownerID, a, meta)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID, meta auditlog.RequestMeta) error {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionAppointmentDelete,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Deleted appointment",
	})
	return nil
}

// SimulationResult describes a dry-run reminder without sending one.
type SimulationResult struct {
	OK           bool       `json:"ok"`
	Simulated    bool       `json:"simulated"`
	Channels     []string   `json:"channels"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Message      string     `json:"message"`
}

// SimulateReminder reports what a reminder for the appointment would
// look like. Nothing is sent; the dry run is audited.
func (s *Service) SimulateReminder(ctx context.Context, ownerID, id uuid.UUID, meta auditlog.RequestMeta) (*SimulationResult, error) {
	a, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusConfirmed {
		return nil, ErrReminderNotConfirmed
	}
	if !a.StartAt.After(s.clock.Now()) {
		return nil, ErrReminderNotFuture
	}

	var channels []string
	if a.ReminderEmailEnabled {
		channels = append(channels, "email")
	}
	if a.ReminderSMSEnabled {
		channels = append(channels, "sms")
	}
	if len(channels) == 0 {
		return nil, ErrReminderNoChannels
	}

	scheduledFor := a.ReminderNextRunAt
	if scheduledFor == nil {
		emailMin, smsMin := DefaultEmailLeadMinutes, DefaultSMSLeadMinutes
		if a.ReminderEmailMinutesBefore != nil {
			emailMin = *a.ReminderEmailMinutesBefore
		}
		if a.ReminderSMSMinutesBefore != nil {
			smsMin = *a.ReminderSMSMinutesBefore
		}
		scheduledFor = computeNextRun(a.StartAt, a.ReminderEmailEnabled, emailMin, a.ReminderSMSEnabled, smsMin)
	}

	metadata := map[string]interface{}{"channels": toInterfaces(channels)}
	if scheduledFor != nil {
		metadata["scheduled_for"] = scheduledFor.Format(time.RFC3339)
	}
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionReminderSimulated,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Simulated appointment reminder",
		Metadata:    metadata,
	})

	return &SimulationResult{
		OK:           true,
		Simulated:    true,
		Channels:     channels,
		ScheduledFor: scheduledFor,
		Message:      "Demo reminder simulated (no message sent).",
	}, nil
}

func (s *Service) recordAutoDisable(ctx context.Context, ownerID uuid.UUID, a *Appointment, meta auditlog.RequestMeta) {
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionReminderDisabledAuto,
		EntityType:  "appointment",
		EntityID:    &a.ID,
		Summary:     "Reminders disabled automatically",
		Metadata:    map[string]interface{}{"status": string(a.Status)},
	})
}

// deriveAction maps an update to its audit action: status transitions
// win, then time changes count as a reschedule, then a plain update.
func deriveAction(snap snapshot, a *Appointment) (action, summary string) {
	if snap.Status != a.Status {
		switch a.Status {
		case StatusCancelled:
			return auditlog.ActionAppointmentCancel, "Cancelled appointment"
		case StatusCompleted:
			return auditlog.ActionAppointmentComplete, "Completed appointment"
		case StatusConfirmed:
			return auditlog.ActionAppointmentConfirmed, "Confirmed appointment"
		}
	} else if !snap.StartAt.Equal(a.StartAt) || !timePtrEqual(snap.EndAt, a.EndAt) {
		return auditlog.ActionAppointmentReschedule, "Rescheduled appointment"
	}
	return auditlog.ActionAppointmentUpdate, "Updated appointment"
}

func recipientEmail(pt *patient.Patient) string {
	if pt.Email == nil {
		return ""
	}
	return strings.TrimSpace(*pt.Email)
}

func (s *Service) details(a *Appointment, patientName, clinicName string) mail.AppointmentDetails {
	d := mail.AppointmentDetails{
		PatientName: patientName,
		ClinicName:  clinicName,
		StartAt:     a.StartAt,
		EndAt:       ResolveEnd(a.StartAt, a.EndAt, s.defaultDuration),
		DoctorName:  a.DoctorName,
	}
	if a.Department != nil {
		d.Department = *a.Department
	}
	if a.Notes != nil {
		d.Notes = *a.Notes
	}
	return d
}

func (s *Service) snapshotDetails(snap snapshot, patientName, clinicName string) mail.AppointmentDetails {
	d := mail.AppointmentDetails{
		PatientName: patientName,
		ClinicName:  clinicName,
		StartAt:     snap.StartAt,
		EndAt:       ResolveEnd(snap.StartAt, snap.EndAt, s.defaultDuration),
		DoctorName:  snap.DoctorName,
	}
	if snap.Department != nil {
		d.Department = *snap.Department
	}
	if snap.Notes != nil {
		d.Notes = *snap.Notes
	}
	return d
}

func (s *Service) sendConfirmation(ctx context.Context, a *Appointment, pt *patient.Patient) error {
	recipient := recipientEmail(pt)
	if recipient == "" {
		return nil
	}
	subject, htmlBody, textBody := mail.BuildConfirmationEmail(
		s.details(a, pt.FullName, s.clinics.ClinicName(ctx, a.OwnerUserID)))
	if err := s.mailer.Send(ctx, recipient, subject, htmlBody, textBody); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

func (s *Service) sendUpdate(ctx context.Context, a *Appointment, pt *patient.Patient, snap snapshot) error {
	recipient := recipientEmail(pt)
	if recipient == "" {
		return nil
	}
	clinicName := s.clinics.ClinicName(ctx, a.OwnerUserID)
	subject, htmlBody, textBody := mail.BuildUpdateEmail(
		s.snapshotDetails(snap, pt.FullName, clinicName),
		s.details(a, pt.FullName, clinicName))
	if err := s.mailer.Send(ctx, recipient, subject, htmlBody, textBody); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

func (s *Service) sendCancellation(ctx context.Context, a *Appointment, pt *patient.Patient, snap *snapshot) error {
	recipient := recipientEmail(pt)
	if recipient == "" {
		return nil
	}
	clinicName := s.clinics.ClinicName(ctx, a.OwnerUserID)
	var d mail.AppointmentDetails
	if snap != nil {
		d = s.snapshotDetails(*snap, pt.FullName, clinicName)
	} else {
		d = s.details(a, pt.FullName, clinicName)
	}
	subject, htmlBody, textBody := mail.BuildCancellationEmail(d)
	if err := s.mailer.Send(ctx, recipient, subject, htmlBody, textBody); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}

func endAtValue(end *time.Time) interface{} {
	if end == nil {
		return nil
	}
	return end.Format(time.RFC3339)
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
