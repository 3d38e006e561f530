package user

import (
	"time"

	"github.com/google/uuid"
)

// RoleAdmin is the only role today. Clinic staff accounts are all admins
// of their own clinic.
const RoleAdmin = "admin"

// User maps to the users table. Every clinic staff account owns its own
// patients, appointments, and audit trail.
type User struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Email               string     `db:"email" json:"email"`
	HashedPassword      string     `db:"hashed_password" json:"-"`
	FullName            string     `db:"full_name" json:"full_name"`
	FirstName           *string    `db:"first_name" json:"first_name,omitempty"`
	LastName            *string    `db:"last_name" json:"last_name,omitempty"`
	Phone               *string    `db:"phone" json:"phone,omitempty"`
	Specialty           *string    `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber       *string    `db:"license_number" json:"license_number,omitempty"`
	LicenseState        *string    `db:"license_state" json:"license_state,omitempty"`
	LicenseCountry      *string    `db:"license_country" json:"license_country,omitempty"`
	NPINumber           *string    `db:"npi_number" json:"npi_number,omitempty"`
	TaxonomyCode        *string    `db:"taxonomy_code" json:"taxonomy_code,omitempty"`
	ClinicName          *string    `db:"clinic_name" json:"clinic_name,omitempty"`
	ClinicAddress       *string    `db:"clinic_address" json:"clinic_address,omitempty"`
	ClinicCity          *string    `db:"clinic_city" json:"clinic_city,omitempty"`
	ClinicState         *string    `db:"clinic_state" json:"clinic_state,omitempty"`
	ClinicZip           *string    `db:"clinic_zip" json:"clinic_zip,omitempty"`
	ClinicCountry       *string    `db:"clinic_country" json:"clinic_country,omitempty"`
	Role                string     `db:"role" json:"role"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileUpdate carries the optional fields of a profile edit. Nil fields
// are left untouched.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Phone          *string `json:"phone"`
	Specialty      *string `json:"specialty"`
	LicenseNumber  *string `json:"license_number"`
	LicenseState   *string `json:"license_state"`
	LicenseCountry *string `json:"license_country"`
	NPINumber      *string `json:"npi_number"`
	TaxonomyCode   *string `json:"taxonomy_code"`
	ClinicName     *string `json:"clinic_name"`
	ClinicAddress  *string `json:"clinic_address"`
	ClinicCity     *string `json:"clinic_city"`
	ClinicState    *string `json:"clinic_state"`
	ClinicZip      *string `json:"clinic_zip"`
	ClinicCountry  *string `json:"clinic_country"`
}
