package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/auditlog"
	"github.com/meditrack/meditrack/internal/platform/auth"
	"github.com/meditrack/meditrack/internal/platform/clock"
)

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*User, error) {
	var out []*User
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type nopAuditRepo struct{}

func (nopAuditRepo) Create(context.Context, *auditlog.Entry) error { return nil }
func (nopAuditRepo) List(context.Context, uuid.UUID, auditlog.ListFilter, int, int) ([]*auditlog.Entry, int, error) {
	return nil, 0, nil
}

func newTestService(repo Repository, clk clock.Clock) *Service {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	audit := auditlog.NewRecorder(nopAuditRepo{}, zerolog.Nop())
	return NewService(repo, tokens, audit, clk, "MediTrack", zerolog.Nop())
}

func seedUser(t *testing.T, repo *mockRepo, email, password string) *User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &User{Email: email, HashedPassword: hashed, FullName: "Dr. Test", Role: RoleAdmin}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	u, token, err := svc.Authenticate(context.Background(), "doc@example.com", "pass123", auditlog.RequestMeta{})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if u.Email != "doc@example.com" {
		t.Errorf("unexpected user: %s", u.Email)
	}
}

func TestAuthenticate_NormalizesEmail(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	if _, _, err := svc.Authenticate(context.Background(), "  Doc@Example.COM ", "pass123", auditlog.RequestMeta{}); err != nil {
		t.Fatalf("expected case-insensitive email match, got %v", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	_, _, err := svc.Authenticate(context.Background(), "doc@example.com", "wrong", auditlog.RequestMeta{})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := newTestService(newMockRepo(), clock.System{})
	_, _, err := svc.Authenticate(context.Background(), "nobody@example.com", "x", auditlog.RequestMeta{})
	if err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_LockoutAfterRepeatedFailures(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@example.com", "pass123")
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, clock.Fixed{T: now})

	for i := 0; i < maxFailedLogins; i++ {
		if _, _, err := svc.Authenticate(context.Background(), "doc@example.com", "wrong", auditlog.RequestMeta{}); err != ErrInvalidCredentials {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Correct password is now rejected until the lockout passes.
	if _, _, err := svc.Authenticate(context.Background(), "doc@example.com", "pass123", auditlog.RequestMeta{}); err != ErrAccountLocked {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// After the window the login succeeds and the counters reset.
	svc.clock = clock.Fixed{T: now.Add(lockoutDuration + time.Minute)}
	if _, _, err := svc.Authenticate(context.Background(), "doc@example.com", "pass123", auditlog.RequestMeta{}); err != nil {
		t.Fatalf("expected login after lockout window, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), u.ID)
	if stored.FailedLoginAttempts != 0 || stored.LockedUntil != nil {
		t.Errorf("expected counters reset, got %+v", stored)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	if _, err := svc.Register(context.Background(), "doc@example.com", "other", "Dr. Two", nil); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateProfile_RecomputesFullName(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	first := "Ada"
	last := "Wong"
	updated, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{FirstName: &first, LastName: &last}, auditlog.RequestMeta{})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FullName != "Ada Wong" {
		t.Errorf("full name = %q, want %q", updated.FullName, "Ada Wong")
	}
}

func TestUpdateProfile_NoChanges(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	if _, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{}, auditlog.RequestMeta{}); err != nil {
		t.Fatalf("UpdateProfile with no changes: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	if err := svc.ChangePassword(context.Background(), u.ID, "wrong", "newpass", auditlog.RequestMeta{}); err != ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), u.ID, "pass123", "newpass", auditlog.RequestMeta{}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "doc@example.com", "newpass", auditlog.RequestMeta{}); err != nil {
		t.Fatalf("expected login with new password, got %v", err)
	}
}

func TestClinicName_Fallback(t *testing.T) {
	repo := newMockRepo()
	u := seedUser(t, repo, "doc@example.com", "pass123")
	svc := newTestService(repo, clock.System{})

	if got := svc.ClinicName(context.Background(), u.ID); got != "MediTrack" {
		t.Errorf("expected fallback clinic name, got %q", got)
	}

	name := "Lakeside Clinic"
	if _, err := svc.UpdateProfile(context.Background(), u.ID, ProfileUpdate{ClinicName: &name}, auditlog.RequestMeta{}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got := svc.ClinicName(context.Background(), u.ID); got != "Lakeside Clinic" {
		t.Errorf("expected clinic name, got %q", got)
	}
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, clock.System{})

	_, created, err := svc.SeedAdmin(context.Background(), "admin@example.com", "admin123")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	_, created, err = svc.SeedAdmin(context.Background(), "admin@example.com", "admin123")
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}
}
