package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/appointment"
	"github.com/meditrack/meditrack/internal/platform/mail"
)

// ClinicNameResolver supplies the clinic display name for an owner.
type ClinicNameResolver interface {
	ClinicName(ctx context.Context, id uuid.UUID) string
}

// Summary reports the outcome of one sweep.
type Summary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
}

// Config bounds the sweep window.
type Config struct {
	WindowHours      int
	LookaheadMinutes int
	DefaultDuration  time.Duration
}

// Dispatcher performs the reminder sweep: it finds due appointments and
// sends each reminder at most once per occurrence.
type Dispatcher struct {
	repo    Repository
	clinics ClinicNameResolver
	mailer  mail.Mailer
	cfg     Config
	logger  zerolog.Logger
}

func NewDispatcher(repo Repository, clinics ClinicNameResolver, mailer mail.Mailer, cfg Config, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, clinics: clinics, mailer: mailer, cfg: cfg, logger: logger}
}

// Dispatch sweeps the window [now, now+WindowHours], extended to at
// least now+LookaheadMinutes. Each candidate is handled independently:
// a send failure is logged and counted as skipped, and reminder_sent_at
// is only stamped after a successful send, so the next sweep retries.
func (d *Dispatcher) Dispatch(ctx context.Context, now time.Time) (Summary, error) {
	windowEnd := now.Add(time.Duration(d.cfg.WindowHours) * time.Hour)
	if lookaheadEnd := now.Add(time.Duration(d.cfg.LookaheadMinutes) * time.Minute); lookaheadEnd.After(windowEnd) {
		windowEnd = lookaheadEnd
	}

	candidates, err := d.repo.ListDue(ctx, now, windowEnd)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Processed: len(candidates)}
	for _, c := range candidates {
		recipient := strings.TrimSpace(c.PatientEmail)
		if recipient == "" {
			summary.Skipped++
			continue
		}

		details := mail.AppointmentDetails{
			PatientName: c.PatientName,
			ClinicName:  d.clinics.ClinicName(ctx, c.OwnerUserID),
			StartAt:     c.StartAt,
			EndAt:       appointment.ResolveEnd(c.StartAt, c.EndAt, d.cfg.DefaultDuration),
			DoctorName:  c.DoctorName,
		}
		if c.Department != nil {
			details.Department = *c.Department
		}
		if c.Notes != nil {
			details.Notes = *c.Notes
		}

		subject, htmlBody, textBody := mail.BuildReminderEmail(details)
		if err := d.mailer.Send(ctx, recipient, subject, htmlBody, textBody); err != nil {
			d.logger.Warn().Err(err).
				Str("appointment_id", c.AppointmentID.String()).
				Msg("reminder send failed")
			summary.Skipped++
			continue
		}
		if err := d.repo.MarkSent(ctx, c.AppointmentID, now); err != nil {
			d.logger.Error().Err(err).
				Str("appointment_id", c.AppointmentID.String()).
				Msg("failed to record sent reminder")
		}
		summary.Sent++
	}

	d.logger.Info().
		Int("processed", summary.Processed).
		Int("sent", summary.Sent).
		Int("skipped", summary.Skipped).
		Msg("reminder sweep finished")
	return summary, nil
}
