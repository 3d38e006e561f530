package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meditrack/meditrack/internal/domain/auditlog"
)

// ErrNameRequired is returned when a patient is created without any
// usable name.
var ErrNameRequired = errors.New("patient first and last name are required")

type Service struct {
	repo  Repository
	audit *auditlog.Recorder
}

func NewService(repo Repository, audit *auditlog.Recorder) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, p *Patient, meta auditlog.RequestMeta) (*Patient, error) {
	fullName := BuildFullName(&p.FullName, p.FirstName, p.LastName)
	if fullName == "" {
		return nil, ErrNameRequired
	}
	p.FullName = fullName
	p.OwnerUserID = ownerID

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	metadata := map[string]interface{}{"full_name": p.FullName}
	if p.Email != nil {
		metadata["email"] = *p.Email
	}
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionPatientCreate,
		EntityType:  "patient",
		EntityID:    &p.ID,
		Summary:     fmt.Sprintf("Created patient %s", p.FullName),
		Metadata:    metadata,
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

// Update applies the non-nil fields of upd and records the old/new value
// of each changed field in the audit trail.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, upd Update, meta auditlog.RequestMeta) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	changedFields := []interface{}{}
	noteChange := func(field string, old, new interface{}) {
		changes[field] = map[string]interface{}{"old": old, "new": new}
		changedFields = append(changedFields, field)
	}

	setStr := func(field string, dst **string, val *string) {
		if val == nil {
			return
		}
		var old interface{}
		if *dst != nil {
			old = **dst
		}
		if *dst == nil || **dst != *val {
			noteChange(field, old, *val)
			*dst = val
		}
	}
	setText := func(field string, dst *string, val *string) {
		if val == nil || *dst == *val {
			return
		}
		noteChange(field, *dst, *val)
		*dst = *val
	}

	setStr("first_name", &p.FirstName, upd.FirstName)
	setStr("last_name", &p.LastName, upd.LastName)
	setStr("sex", &p.Sex, upd.Sex)
	setStr("phone", &p.Phone, upd.Phone)
	setStr("email", &p.Email, upd.Email)
	setStr("address", &p.Address, upd.Address)
	setText("medical_history", &p.MedicalHistory, upd.MedicalHistory)
	setText("medications", &p.Medications, upd.Medications)
	setText("notes", &p.Notes, upd.Notes)
	if upd.DateOfBirth != nil && (p.DateOfBirth == nil || !p.DateOfBirth.Equal(*upd.DateOfBirth)) {
		var old interface{}
		if p.DateOfBirth != nil {
			old = p.DateOfBirth.Format("2006-01-02")
		}
		noteChange("date_of_birth", old, upd.DateOfBirth.Format("2006-01-02"))
		p.DateOfBirth = upd.DateOfBirth
	}

	if upd.FullName != nil || upd.FirstName != nil || upd.LastName != nil {
		if fullName := BuildFullName(upd.FullName, p.FirstName, p.LastName); fullName != "" && fullName != p.FullName {
			noteChange("full_name", p.FullName, fullName)
			p.FullName = fullName
		}
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionPatientUpdate,
		EntityType:  "patient",
		EntityID:    &p.ID,
		Summary:     fmt.Sprintf("Updated patient %s", p.FullName),
		Metadata:    map[string]interface{}{"changed_fields": changedFields, "changes": changes},
	})
	return p, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID, meta auditlog.RequestMeta) error {
	p, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	metadata := map[string]interface{}{"full_name": p.FullName}
	if p.Email != nil {
		metadata["email"] = *p.Email
	}
	s.audit.Record(ctx, auditlog.Event{
		RequestMeta: meta,
		OwnerUserID: ownerID,
		Action:      auditlog.ActionPatientDelete,
		EntityType:  "patient",
		EntityID:    &p.ID,
		Summary:     fmt.Sprintf("Deleted patient %s", p.FullName),
		Metadata:    metadata,
	})
	return nil
}
