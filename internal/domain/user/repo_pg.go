package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meditrack/meditrack/internal/platform/db"
)

// ErrNotFound is returned when no user matches the lookup.
var ErrNotFound = errors.New("user not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, email, hashed_password, full_name, first_name, last_name, phone,
	specialty, license_number, license_state, license_country, npi_number, taxonomy_code,
	clinic_name, clinic_address, clinic_city, clinic_state, clinic_zip, clinic_country,
	role, failed_login_attempts, locked_until, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.FullName, &u.FirstName, &u.LastName, &u.Phone,
		&u.Specialty, &u.LicenseNumber, &u.LicenseState, &u.LicenseCountry, &u.NPINumber, &u.TaxonomyCode,
		&u.ClinicName, &u.ClinicAddress, &u.ClinicCity, &u.ClinicState, &u.ClinicZip, &u.ClinicCountry,
		&u.Role, &u.FailedLoginAttempts, &u.LockedUntil, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO users (id, email, hashed_password, full_name, first_name, last_name, phone,
			specialty, license_number, license_state, license_country, npi_number, taxonomy_code,
			clinic_name, clinic_address, clinic_city, clinic_state, clinic_zip, clinic_country, role)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		u.ID, u.Email, u.HashedPassword, u.FullName, u.FirstName, u.LastName, u.Phone,
		u.Specialty, u.LicenseNumber, u.LicenseState, u.LicenseCountry, u.NPINumber, u.TaxonomyCode,
		u.ClinicName, u.ClinicAddress, u.ClinicCity, u.ClinicState, u.ClinicZip, u.ClinicCountry, u.Role)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users SET hashed_password=$2, full_name=$3, first_name=$4, last_name=$5, phone=$6,
			specialty=$7, license_number=$8, license_state=$9, license_country=$10,
			npi_number=$11, taxonomy_code=$12,
			clinic_name=$13, clinic_address=$14, clinic_city=$15, clinic_state=$16,
			clinic_zip=$17, clinic_country=$18,
			failed_login_attempts=$19, locked_until=$20, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.HashedPassword, u.FullName, u.FirstName, u.LastName, u.Phone,
		u.Specialty, u.LicenseNumber, u.LicenseState, u.LicenseCountry,
		u.NPINumber, u.TaxonomyCode,
		u.ClinicName, u.ClinicAddress, u.ClinicCity, u.ClinicState,
		u.ClinicZip, u.ClinicCountry,
		u.FailedLoginAttempts, u.LockedUntil)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}
