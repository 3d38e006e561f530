package reminder

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/platform/mail"
)

var sweepNow = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

type storedCandidate struct {
	Candidate
	sentAt *time.Time
}

type mockRepo struct {
	items map[uuid.UUID]*storedCandidate
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: map[uuid.UUID]*storedCandidate{}}
}

func (r *mockRepo) add(c Candidate) uuid.UUID {
	if c.AppointmentID == uuid.Nil {
		c.AppointmentID = uuid.New()
	}
	r.items[c.AppointmentID] = &storedCandidate{Candidate: c}
	return c.AppointmentID
}

func (r *mockRepo) ListDue(_ context.Context, windowStart, windowEnd time.Time) ([]*Candidate, error) {
	var out []*Candidate
	for _, sc := range r.items {
		if sc.sentAt != nil {
			continue
		}
		if sc.StartAt.Before(windowStart) || sc.StartAt.After(windowEnd) {
			continue
		}
		c := sc.Candidate
		out = append(out, &c)
	}
	return out, nil
}

func (r *mockRepo) MarkSent(_ context.Context, appointmentID uuid.UUID, sentAt time.Time) error {
	if sc, ok := r.items[appointmentID]; ok && sc.sentAt == nil {
		sc.sentAt = &sentAt
	}
	return nil
}

type stubClinics struct{ name string }

func (s stubClinics) ClinicName(context.Context, uuid.UUID) string { return s.name }

func newDispatcher(repo Repository, mailer mail.Mailer) *Dispatcher {
	cfg := Config{WindowHours: 24, LookaheadMinutes: 90, DefaultDuration: 30 * time.Minute}
	return NewDispatcher(repo, stubClinics{name: "North Clinic"}, mailer, cfg, zerolog.Nop())
}

func TestDispatchSendsAndMarks(t *testing.T) {
	repo := newMockRepo()
	id := repo.add(Candidate{
		OwnerUserID:  uuid.New(),
		PatientName:  "Ada Smith",
		PatientEmail: "ada@example.com",
		StartAt:      sweepNow.Add(2 * time.Hour),
		DoctorName:   "Dr. Chen",
	})
	mailer := &mail.Mock{}

	summary, err := newDispatcher(repo, mailer).Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Processed != 1 || summary.Sent != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}

	msgs := mailer.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 email, got %d", len(msgs))
	}
	if msgs[0].Subject != "Appointment reminder - North Clinic" {
		t.Errorf("subject = %q", msgs[0].Subject)
	}
	if !strings.Contains(msgs[0].TextBody, "Dr. Chen") {
		t.Error("reminder should include the doctor name")
	}
	if sc := repo.items[id]; sc.sentAt == nil || !sc.sentAt.Equal(sweepNow) {
		t.Errorf("reminder_sent_at = %v, want %v", sc.sentAt, sweepNow)
	}
}

func TestDispatchIsIdempotent(t *testing.T) {
	repo := newMockRepo()
	repo.add(Candidate{
		OwnerUserID:  uuid.New(),
		PatientName:  "Ada Smith",
		PatientEmail: "ada@example.com",
		StartAt:      sweepNow.Add(time.Hour),
	})
	mailer := &mail.Mock{}
	d := newDispatcher(repo, mailer)

	if summary, _ := d.Dispatch(context.Background(), sweepNow); summary.Sent != 1 {
		t.Fatalf("first sweep sent = %d, want 1", summary.Sent)
	}
	summary, err := d.Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("second Dispatch: %v", err)
	}
	if summary.Processed != 0 || summary.Sent != 0 {
		t.Errorf("second sweep should be empty, got %+v", summary)
	}
	if len(mailer.Messages()) != 1 {
		t.Errorf("expected exactly one email total, got %d", len(mailer.Messages()))
	}
}

func TestDispatchWindowBounds(t *testing.T) {
	repo := newMockRepo()
	inWindow := repo.add(Candidate{
		PatientName:  "In Window",
		PatientEmail: "in@example.com",
		StartAt:      sweepNow.Add(12 * time.Hour),
	})
	repo.add(Candidate{
		PatientName:  "Too Far",
		PatientEmail: "far@example.com",
		StartAt:      sweepNow.Add(48 * time.Hour),
	})
	repo.add(Candidate{
		PatientName:  "Already Started",
		PatientEmail: "past@example.com",
		StartAt:      sweepNow.Add(-time.Hour),
	})
	mailer := &mail.Mock{}

	summary, err := newDispatcher(repo, mailer).Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Processed != 1 || summary.Sent != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if repo.items[inWindow].sentAt == nil {
		t.Error("in-window candidate should be marked sent")
	}
}

func TestDispatchLookaheadExtendsWindow(t *testing.T) {
	repo := newMockRepo()
	repo.add(Candidate{
		PatientName:  "Soon",
		PatientEmail: "soon@example.com",
		StartAt:      sweepNow.Add(2 * time.Hour),
	})
	mailer := &mail.Mock{}
	cfg := Config{WindowHours: 1, LookaheadMinutes: 180, DefaultDuration: 30 * time.Minute}
	d := NewDispatcher(repo, stubClinics{name: "North Clinic"}, mailer, cfg, zerolog.Nop())

	summary, err := d.Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("lookahead should extend the window past WindowHours, got %+v", summary)
	}
}

func TestDispatchSkipsBlankRecipient(t *testing.T) {
	repo := newMockRepo()
	id := repo.add(Candidate{
		PatientName:  "No Email",
		PatientEmail: "   ",
		StartAt:      sweepNow.Add(time.Hour),
	})
	mailer := &mail.Mock{}

	summary, err := newDispatcher(repo, mailer).Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Processed != 1 || summary.Sent != 0 || summary.Skipped != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if repo.items[id].sentAt != nil {
		t.Error("skipped candidate must not be marked sent")
	}
}

func TestDispatchSendFailureRetriesNextSweep(t *testing.T) {
	repo := newMockRepo()
	id := repo.add(Candidate{
		PatientName:  "Flaky",
		PatientEmail: "flaky@example.com",
		StartAt:      sweepNow.Add(time.Hour),
	})
	mailer := &mail.Mock{ShouldFail: true}
	d := newDispatcher(repo, mailer)

	summary, err := d.Dispatch(context.Background(), sweepNow)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if summary.Sent != 0 || summary.Skipped != 1 {
		t.Errorf("failed send should count as skipped, got %+v", summary)
	}
	if repo.items[id].sentAt != nil {
		t.Error("failed send must not be marked sent")
	}

	mailer.ShouldFail = false
	if summary, _ := d.Dispatch(context.Background(), sweepNow); summary.Sent != 1 {
		t.Errorf("retry should send, got %+v", summary)
	}
}
