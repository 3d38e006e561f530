package appointment

import (
	"testing"
	"time"
)

var reminderNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestReminderEligible(t *testing.T) {
	future := reminderNow.Add(time.Hour)
	past := reminderNow.Add(-time.Hour)

	cases := []struct {
		name   string
		status Status
		start  time.Time
		want   bool
	}{
		{"confirmed future", StatusConfirmed, future, true},
		{"confirmed past", StatusConfirmed, past, false},
		{"confirmed now", StatusConfirmed, reminderNow, false},
		{"unconfirmed future", StatusUnconfirmed, future, false},
		{"scheduled future", StatusScheduled, future, false},
		{"completed future", StatusCompleted, future, false},
		{"cancelled future", StatusCancelled, future, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reminderEligible(tc.status, tc.start, reminderNow); got != tc.want {
				t.Errorf("reminderEligible(%s, %v) = %v, want %v", tc.status, tc.start, got, tc.want)
			}
		})
	}
}

func TestComputeNextRun(t *testing.T) {
	start := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)

	if got := computeNextRun(start, false, 1440, false, 120); got != nil {
		t.Errorf("no channels: got %v, want nil", got)
	}
	if got := computeNextRun(start, true, 1440, false, 120); got == nil || !got.Equal(start.Add(-1440*time.Minute)) {
		t.Errorf("email only: got %v, want %v", got, start.Add(-1440*time.Minute))
	}
	if got := computeNextRun(start, false, 1440, true, 120); got == nil || !got.Equal(start.Add(-120*time.Minute)) {
		t.Errorf("sms only: got %v, want %v", got, start.Add(-120*time.Minute))
	}
	// Both enabled: earliest lead wins.
	if got := computeNextRun(start, true, 1440, true, 120); got == nil || !got.Equal(start.Add(-1440*time.Minute)) {
		t.Errorf("both channels: got %v, want %v", got, start.Add(-1440*time.Minute))
	}
	if got := computeNextRun(start, true, 60, true, 120); got == nil || !got.Equal(start.Add(-120*time.Minute)) {
		t.Errorf("sms earlier: got %v, want %v", got, start.Add(-120*time.Minute))
	}
}

func TestEnforceReminderRulesIneligible(t *testing.T) {
	next := reminderNow.Add(30 * time.Minute)
	a := &Appointment{
		Status:               StatusUnconfirmed,
		StartAt:              reminderNow.Add(2 * time.Hour),
		ReminderEmailEnabled: true,
		ReminderNextRunAt:    &next,
	}

	autoDisabled := enforceReminderRules(a, false, reminderNow)
	if !autoDisabled {
		t.Error("expected auto-disable when an enabled reminder becomes ineligible")
	}
	if a.ReminderEmailEnabled || a.ReminderSMSEnabled {
		t.Error("channel flags should be forced off")
	}
	if a.ReminderNextRunAt != nil {
		t.Errorf("next run should be cleared, got %v", a.ReminderNextRunAt)
	}
}

func TestEnforceReminderRulesIneligibleNothingEnabled(t *testing.T) {
	a := &Appointment{Status: StatusCancelled, StartAt: reminderNow.Add(time.Hour)}
	if enforceReminderRules(a, false, reminderNow) {
		t.Error("no channels were on, nothing to auto-disable")
	}
}

func TestEnforceReminderRulesPreviouslyEnabled(t *testing.T) {
	a := &Appointment{Status: StatusCompleted, StartAt: reminderNow.Add(time.Hour)}
	if !enforceReminderRules(a, true, reminderNow) {
		t.Error("previously enabled reminders should report auto-disable")
	}
}

func TestEnforceReminderRulesEligible(t *testing.T) {
	a := &Appointment{
		Status:               StatusConfirmed,
		StartAt:              reminderNow.Add(48 * time.Hour),
		ReminderEmailEnabled: true,
	}

	if enforceReminderRules(a, false, reminderNow) {
		t.Error("eligible appointment should not auto-disable")
	}
	if a.ReminderEmailMinutesBefore == nil || *a.ReminderEmailMinutesBefore != DefaultEmailLeadMinutes {
		t.Errorf("email lead should default to %d", DefaultEmailLeadMinutes)
	}
	if a.ReminderSMSMinutesBefore == nil || *a.ReminderSMSMinutesBefore != DefaultSMSLeadMinutes {
		t.Errorf("sms lead should default to %d", DefaultSMSLeadMinutes)
	}
	want := a.StartAt.Add(-time.Duration(DefaultEmailLeadMinutes) * time.Minute)
	if a.ReminderNextRunAt == nil || !a.ReminderNextRunAt.Equal(want) {
		t.Errorf("next run = %v, want %v", a.ReminderNextRunAt, want)
	}
}
