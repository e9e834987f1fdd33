package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

var noticeColumns = []string{"id", "title", "body", "audience", "published_by_id", "created_at", "updated_at"}

func scanNotice(row pgx.Row, n *models.Notice) error {
	return row.Scan(&n.ID, &n.Title, &n.Body, &n.Audience, &n.PublishedByID, &n.CreatedAt, &n.UpdatedAt)
}

// NoticeRepository handles notices
type NoticeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(db *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{db: db, sb: newBuilder()}
}

// Create inserts a notice
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("notices").
		Columns("title", "body", "audience", "published_by_id", "created_at", "updated_at").
		Values(n.Title, n.Body, n.Audience, n.PublishedByID, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notice query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("title", n.Title).Msg("Error creating notice")
		return fmt.Errorf("error creating notice: %w", err)
	}
	return nil
}

// GetByID retrieves an active notice
func (r *NoticeRepository) GetByID(ctx context.Context, id int64) (*models.Notice, error) {
	n := &models.Notice{}
	err := queryRow(ctx, r.db, r.sb.Select(noticeColumns...).From("notices").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrNoticeNotFound, func(row pgx.Row) error { return scanNotice(row, n) })
	if err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a page of active notices addressed to any of the audiences, newest first
func (r *NoticeRepository) List(ctx context.Context, audiences []models.Audience, p Page) ([]models.Notice, int64, error) {
	if len(audiences) == 0 {
		return []models.Notice{}, 0, nil
	}
	names := make([]string, len(audiences))
	for i, a := range audiences {
		names[i] = string(a)
	}
	where := squirrel.Eq{"audience": names, "deleted_at": nil}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("notices").Where(where), "notices")
	if err != nil || total == 0 {
		return []models.Notice{}, total, err
	}

	list := make([]models.Notice, 0, p.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(noticeColumns...).From("notices").Where(where).
		OrderBy("created_at DESC", "id DESC"), p), func(rows pgx.Rows) error {
		var n models.Notice
		if err := scanNotice(rows, &n); err != nil {
			return err
		}
		list = append(list, n)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notices: %w", err)
	}
	return list, total, nil
}

// SoftDelete marks a notice deleted
func (r *NoticeRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDelete(ctx, r.db, r.sb, "notices", id, deletedBy, apperrors.ErrNoticeNotFound)
}
