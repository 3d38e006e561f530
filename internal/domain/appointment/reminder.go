package appointment

import "time"

// Default reminder lead times, in minutes before the appointment start.
const (
	DefaultEmailLeadMinutes = 1440
	DefaultSMSLeadMinutes   = 120
)

// reminderEligible reports whether reminders may be active: only
// explicitly confirmed appointments that have not yet started qualify.
func reminderEligible(status Status, start, now time.Time) bool {
	return status == StatusConfirmed && start.After(now)
}

// computeNextRun returns the earliest reminder fire time across enabled
// channels, or nil when no channel is enabled.
func computeNextRun(start time.Time, emailEnabled bool, emailMinutes int, smsEnabled bool, smsMinutes int) *time.Time {
	var next *time.Time
	consider := func(t time.Time) {
		if next == nil || t.Before(*next) {
			next = &t
		}
	}
	if emailEnabled {
		consider(start.Add(-time.Duration(emailMinutes) * time.Minute))
	}
	if smsEnabled {
		consider(start.Add(-time.Duration(smsMinutes) * time.Minute))
	}
	return next
}

// defaultLeadTimes fills in missing per-channel lead times.
func defaultLeadTimes(a *Appointment) {
	if a.ReminderEmailMinutesBefore == nil {
		v := DefaultEmailLeadMinutes
		a.ReminderEmailMinutesBefore = &v
	}
	if a.ReminderSMSMinutesBefore == nil {
		v := DefaultSMSLeadMinutes
		a.ReminderSMSMinutesBefore = &v
	}
}

// enforceReminderRules reconciles reminder state with the appointment's
// current status and start time. Ineligible appointments get both
// channels forced off and the next-run time cleared; the return value
// is true when that auto-disable silenced a previously or currently
// enabled reminder. Eligible appointments get missing lead times
// defaulted and the next-run time recomputed.
func enforceReminderRules(a *Appointment, previouslyEnabled bool, now time.Time) bool {
	if !reminderEligible(a.Status, a.StartAt, now) {
		autoDisabled := a.ReminderEmailEnabled || a.ReminderSMSEnabled || previouslyEnabled
		a.ReminderEmailEnabled = false
		a.ReminderSMSEnabled = false
		a.ReminderNextRunAt = nil
		return autoDisabled
	}
	defaultLeadTimes(a)
	a.ReminderNextRunAt = computeNextRun(
		a.StartAt,
		a.ReminderEmailEnabled, *a.ReminderEmailMinutesBefore,
		a.ReminderSMSEnabled, *a.ReminderSMSMinutesBefore,
	)
	return false
}
