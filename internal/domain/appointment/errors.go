package appointment

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no appointment matches the lookup
	// within the caller's records.
	ErrNotFound = errors.New("appointment not found")

	// ErrMissingStart is returned when no start time is provided.
	ErrMissingStart = errors.New("appointment start time is required")

	// ErrInvalidTimeRange is returned when an end time does not fall
	// strictly after the start time.
	ErrInvalidTimeRange = errors.New("appointment end time must be after start time")

	// ErrOverlapConflict is returned when a schedulable appointment
	// would overlap another schedulable appointment of the same owner.
	ErrOverlapConflict = errors.New("appointment time overlaps with an existing appointment")

	// ErrInvalidStatus is returned for status values outside the enum.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// StateError signals that an operation's precondition on the current
// appointment state is not met.
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

var (
	ErrReminderNotConfirmed = &StateError{msg: "reminders are only available for confirmed appointments"}
	ErrReminderNotFuture    = &StateError{msg: "reminders are only available for future appointments"}
	ErrReminderNoChannels   = &StateError{msg: "no reminders are enabled for this appointment"}
)

// NotificationError wraps a mailer failure on a synchronous path that
// promises delivery. The underlying state change has already been
// persisted when this is returned.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification delivery failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
