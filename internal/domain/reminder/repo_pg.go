package reminder

import (
	"context"
	"time"

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

func (r *repoPG) ListDue(ctx context.Context, windowStart, windowEnd time.Time) ([]*Candidate, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT a.id, a.owner_user_id, p.full_name, p.email, a.start_at, a.end_at,
			a.doctor_name, a.department, a.notes
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status = 'confirmed'
		  AND a.reminder_sent_at IS NULL
		  AND a.start_at >= $1 AND a.start_at <= $2
		  AND p.email IS NOT NULL AND p.email <> ''
		ORDER BY a.start_at`, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.AppointmentID, &c.OwnerUserID, &c.PatientName, &c.PatientEmail,
			&c.StartAt, &c.EndAt, &c.DoctorName, &c.Department, &c.Notes); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *repoPG) MarkSent(ctx context.Context, appointmentID uuid.UUID, sentAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET reminder_sent_at = $2, updated_at = NOW()
		WHERE id = $1 AND reminder_sent_at IS NULL`, appointmentID, sentAt)
	return err
}
