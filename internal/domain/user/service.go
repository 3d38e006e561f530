package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack/meditrack/internal/domain/auditlog"
	"github.com/meditrack/meditrack/internal/platform/auth"
	"github.com/meditrack/meditrack/internal/platform/clock"
)

var (
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWrongPassword      = errors.New("old password is incorrect")
)

// Lockout thresholds. After maxFailedLogins consecutive failures the
// account refuses logins until the lockout window passes.
const (
	maxFailedLogins = 5
	lockoutDuration = 15 * time.Minute
)

type Service struct {
	repo       Repository
	tokens     *auth.TokenIssuer
	audit      *auditlog.Recorder
	clock      clock.Clock
	clinicName string
	logger     zerolog.Logger
}

// NewService wires the account service. clinicName is the fallback used in
// patient-facing emails when the user has not set a clinic name.
func NewService(repo Repository, tokens *auth.TokenIssuer, audit *auditlog.Recorder, clk clock.Clock, clinicName string, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, audit: audit, clock: clk, clinicName: clinicName, logger: logger}
}

// Authenticate verifies credentials and returns the user plus a signed
// access token. Failed attempts count toward a temporary lockout.
func (s *Service) Authenticate(ctx context.Context, email, password string, meta auditlog.RequestMeta) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	now := s.clock.Now()
	if u.LockedUntil != nil && now.Before(*u.LockedUntil) {
		return nil, "", ErrAccountLocked
	}

	if !auth.CheckPassword(u.HashedPassword, password) {
		u.FailedLoginAttempts++
		if u.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockoutDuration)
			u.LockedUntil = &until
			u.FailedLoginAttempts = 0
		}
		if err := s.repo.Update(ctx, u); err != nil {
			s.logger.Warn().Err(err).Msg("recording failed login attempt")
		}
		return nil, "", ErrInvalidCredentials
	}

	if u.FailedLoginAttempts > 0 || u.LockedUntil != nil {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
		if err := s.repo.Update(ctx, u); err != nil {
			s.logger.Warn().Err(err).Msg("resetting login attempts")
		}
	}

	token, err := s.tokens.Issue(u.ID, u.Email, u.Role, now)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: u.ID,
		Action:      auditlog.ActionUserLogin,
		EntityType:  "user",
		EntityID:    &u.ID,
		Summary:     "Signed in",
	})
	return u, token, nil
}

// Register creates a new staff account.
func (s *Service) Register(ctx context.Context, email, password, fullName string, phone *string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &User{
		Email:          email,
		HashedPassword: hashed,
		FullName:       fullName,
		Phone:          phone,
		Role:           RoleAdmin,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// UpdateProfile applies the non-nil fields of upd. When the first or last
// name changes, the display name is recomputed from the parts.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate, meta auditlog.RequestMeta) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var changed []string
	setIf := func(field string, dst **string, val *string) {
		if val == nil {
			return
		}
		if *dst == nil || **dst != *val {
			*dst = val
			changed = append(changed, field)
		}
	}

	setIf("first_name", &u.FirstName, upd.FirstName)
	setIf("last_name", &u.LastName, upd.LastName)
	setIf("phone", &u.Phone, upd.Phone)
	setIf("specialty", &u.Specialty, upd.Specialty)
	setIf("license_number", &u.LicenseNumber, upd.LicenseNumber)
	setIf("license_state", &u.LicenseState, upd.LicenseState)
	setIf("license_country", &u.LicenseCountry, upd.LicenseCountry)
	setIf("npi_number", &u.NPINumber, upd.NPINumber)
	setIf("taxonomy_code", &u.TaxonomyCode, upd.TaxonomyCode)
	setIf("clinic_name", &u.ClinicName, upd.ClinicName)
	setIf("clinic_address", &u.ClinicAddress, upd.ClinicAddress)
	setIf("clinic_city", &u.ClinicCity, upd.ClinicCity)
	setIf("clinic_state", &u.ClinicState, upd.ClinicState)
	setIf("clinic_zip", &u.ClinicZip, upd.ClinicZip)
	setIf("clinic_country", &u.ClinicCountry, upd.ClinicCountry)

	if contains(changed, "first_name") || contains(changed, "last_name") {
		var parts []string
		if u.FirstName != nil && *u.FirstName != "" {
			parts = append(parts, *u.FirstName)
		}
		if u.LastName != nil && *u.LastName != "" {
			parts = append(parts, *u.LastName)
		}
		if len(parts) > 0 {
			u.FullName = strings.Join(parts, " ")
		}
	}

	if len(changed) == 0 {
		return u, nil
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: u.ID,
		Action:      auditlog.ActionUserProfileUpdate,
		EntityType:  "user",
		EntityID:    &u.ID,
		Summary:     "Profile updated",
		Metadata:    map[string]interface{}{"changed_fields": toInterfaceSlice(changed)},
	})
	return u, nil
}

// ChangePassword verifies the old password before replacing it.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string, meta auditlog.RequestMeta) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.HashedPassword, oldPassword) {
		return ErrWrongPassword
	}
	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.HashedPassword = hashed
	if err := s.repo.Update(ctx, u); err != nil {
		return err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: u.ID,
		Action:      "auth.change_password",
		EntityType:  "user",
		EntityID:    &u.ID,
		Summary:     "Password changed",
	})
	return nil
}

// ClinicName returns the user's clinic name, falling back to the
// configured project name when unset.
func (s *Service) ClinicName(ctx context.Context, id uuid.UUID) string {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil || u.ClinicName == nil || *u.ClinicName == "" {
		return s.clinicName
	}
	return *u.ClinicName
}

// SeedAdmin ensures a default admin account exists. Used at startup and by
// the seed-admin command.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) (*User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	u, err := s.Register(ctx, email, password, "Clinic Admin", nil)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info().Str("email", email).Msg("seeded default admin account")
	return u, true, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func toInterfaceSlice(list []string) []interface{} {
	out := make([]interface{}, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
