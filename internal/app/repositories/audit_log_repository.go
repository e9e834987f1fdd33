package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
)

// AuditLogFilter filters the audit log list
type AuditLogFilter struct {
	EntityType string
	EntityID   *int64
	ActorID    *int64
	Page
}

// AuditLogRepository handles audit_logs
type AuditLogRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAuditLogRepository creates a new AuditLogRepository
func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{db: db, sb: newBuilder()}
}

// Create inserts an audit record
func (r *AuditLogRepository) Create(ctx context.Context, l *models.AuditLog) error {
	meta := l.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode audit metadata: %w", err)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	sql, args, err := r.sb.Insert("audit_logs").
		Columns("actor_id", "action", "entity_type", "entity_id", "metadata", "ip_address", "created_at").
		Values(l.ActorID, l.Action, l.EntityType, l.EntityID, raw, l.IPAddress, l.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&l.ID); err != nil {
		return fmt.Errorf("error inserting audit log: %w", err)
	}
	return nil
}

// List returns a page of audit records, newest first
func (r *AuditLogRepository) List(ctx context.Context, f AuditLogFilter) ([]models.AuditLog, int64, error) {
	where := squirrel.And{}
	if f.EntityType != "" {
		where = append(where, squirrel.Eq{"entity_type": f.EntityType})
	}
	if f.EntityID != nil {
		where = append(where, squirrel.Eq{"entity_id": *f.EntityID})
	}
	if f.ActorID != nil {
		where = append(where, squirrel.Eq{"actor_id": *f.ActorID})
	}

	countQ := r.sb.Select("COUNT(*)").From("audit_logs")
	listQ := r.sb.Select("id", "actor_id", "action", "entity_type", "entity_id", "metadata", "ip_address", "created_at").
		From("audit_logs")
	if len(where) > 0 {
		countQ = countQ.Where(where)
		listQ = listQ.Where(where)
	}

	total, err := count(ctx, r.db, countQ, "audit logs")
	if err != nil || total == 0 {
		return []models.AuditLog{}, total, err
	}

	list := make([]models.AuditLog, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(listQ.OrderBy("created_at DESC", "id DESC"), f.Page), func(rows pgx.Rows) error {
		var l models.AuditLog
		var raw []byte
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.EntityType, &l.EntityID, &raw, &l.IPAddress, &l.CreatedAt); err != nil {
			return err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &l.Metadata); err != nil {
				return fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}
		list = append(list, l)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return list, total, nil
}
