package auditlog

import (
	"context"
	"fmt"

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

const entryCols = `id, owner_user_id, action, entity_type, entity_id, summary,
	metadata, ip_address, user_agent, request_id, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.OwnerUserID, &e.Action, &e.EntityType, &e.EntityID,
		&e.Summary, &e.MetadataJSON, &e.IPAddress, &e.UserAgent, &e.RequestID, &e.CreatedAt)
	return &e, err
}

func (r *repoPG) Create(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_logs (id, owner_user_id, action, entity_type, entity_id,
			summary, metadata, ip_address, user_agent, request_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		e.ID, e.OwnerUserID, e.Action, e.EntityType, e.EntityID,
		e.Summary, e.MetadataJSON, e.IPAddress, e.UserAgent, e.RequestID)
	return err
}

func (r *repoPG) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter, limit, offset int) ([]*Entry, int, error) {
	query := `SELECT ` + entryCols + ` FROM audit_logs WHERE owner_user_id = $1`
	countQuery := `SELECT COUNT(*) FROM audit_logs WHERE owner_user_id = $1`
	args := []interface{}{ownerID}
	idx := 2

	if filter.EntityType != "" {
		query += fmt.Sprintf(` AND entity_type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND entity_type = $%d`, idx)
		args = append(args, filter.EntityType)
		idx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(` AND action = $%d`, idx)
		countQuery += fmt.Sprintf(` AND action = $%d`, idx)
		args = append(args, filter.Action)
		idx++
	}
	if filter.EntityID != nil {
		query += fmt.Sprintf(` AND entity_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND entity_id = $%d`, idx)
		args = append(args, *filter.EntityID)
		idx++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND created_at >= $%d`, idx)
		args = append(args, *filter.Since)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
