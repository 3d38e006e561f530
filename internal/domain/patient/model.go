package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Records are scoped to the staff
// account that created them.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OwnerUserID    uuid.UUID  `db:"owner_user_id" json:"-"`
	FullName       string     `db:"full_name" json:"full_name"`
	FirstName      *string    `db:"first_name" json:"first_name,omitempty"`
	LastName       *string    `db:"last_name" json:"last_name,omitempty"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Sex            *string    `db:"sex" json:"sex,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Address        *string    `db:"address" json:"address,omitempty"`
	MedicalHistory string     `db:"medical_history" json:"medical_history"`
	Medications    string     `db:"medications" json:"medications"`
	Notes          string     `db:"notes" json:"notes"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// Update carries the optional fields of a patient edit. Nil fields are
// left untouched.
type Update struct {
	FullName       *string    `json:"full_name"`
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Sex            *string    `json:"sex"`
	Phone          *string    `json:"phone"`
	Email          *string    `json:"email"`
	Address        *string    `json:"address"`
	MedicalHistory *string    `json:"medical_history"`
	Medications    *string    `json:"medications"`
	Notes          *string    `json:"notes"`
}

// BuildFullName prefers an explicit full name and otherwise joins the
// parts. Returns "" when no usable name is present.
func BuildFullName(fullName, firstName, lastName *string) string {
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		return strings.TrimSpace(*fullName)
	}
	var parts []string
	for _, p := range []*string{firstName, lastName} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}
