package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meditrack/meditrack/internal/platform/db"
)

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

const appointmentCols = `id, owner_user_id, patient_id, doctor_name, department, start_at, end_at,
	status, notes, reminder_email_enabled, reminder_sms_enabled,
	reminder_email_minutes_before, reminder_sms_minutes_before,
	reminder_next_run_at, reminder_sent_at, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.OwnerUserID, &a.PatientID, &a.DoctorName, &a.Department, &a.StartAt, &a.EndAt,
		&a.Status, &a.Notes, &a.ReminderEmailEnabled, &a.ReminderSMSEnabled,
		&a.ReminderEmailMinutesBefore, &a.ReminderSMSMinutesBefore,
		&a.ReminderNextRunAt, &a.ReminderSentAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (id, owner_user_id, patient_id, doctor_name, department,
			start_at, end_at, status, notes, reminder_email_enabled, reminder_sms_enabled,
			reminder_email_minutes_before, reminder_sms_minutes_before, reminder_next_run_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at`,
		a.ID, a.OwnerUserID, a.PatientID, a.DoctorName, a.Department,
		a.StartAt, a.EndAt, a.Status, a.Notes, a.ReminderEmailEnabled, a.ReminderSMSEnabled,
		a.ReminderEmailMinutesBefore, a.ReminderSMSMinutesBefore, a.ReminderNextRunAt,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1 AND owner_user_id = $2`, id, ownerID))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET patient_id=$3, doctor_name=$4, department=$5, start_at=$6, end_at=$7,
			status=$8, notes=$9, reminder_email_enabled=$10, reminder_sms_enabled=$11,
			reminder_email_minutes_before=$12, reminder_sms_minutes_before=$13,
			reminder_next_run_at=$14, reminder_sent_at=$15, updated_at=NOW()
		WHERE id = $1 AND owner_user_id = $2`,
		a.ID, a.OwnerUserID, a.PatientID, a.DoctorName, a.Department, a.StartAt, a.EndAt,
		a.Status, a.Notes, a.ReminderEmailEnabled, a.ReminderSMSEnabled,
		a.ReminderEmailMinutesBefore, a.ReminderSMSMinutesBefore,
		a.ReminderNextRunAt, a.ReminderSentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointments WHERE id = $1 AND owner_user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE owner_user_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE owner_user_id = $1
		 ORDER BY start_at DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, ownerID, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE owner_user_id = $1 AND patient_id = $2`,
		ownerID, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments
		 WHERE owner_user_id = $1 AND patient_id = $2
		 ORDER BY start_at DESC LIMIT $3 OFFSET $4`, ownerID, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items, err := collect(rows)
	return items, total, err
}

func (r *repoPG) ListSchedulable(ctx context.Context, ownerID, excludeID uuid.UUID) ([]*Appointment, error) {
	q := `SELECT ` + appointmentCols + ` FROM appointments
		 WHERE owner_user_id = $1 AND status IN ('unconfirmed','confirmed','scheduled')`
	args := []interface{}{ownerID}
	if excludeID != uuid.Nil {
		q += ` AND id <> $2`
		args = append(args, excludeID)
	}
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
