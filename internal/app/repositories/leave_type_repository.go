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
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

const leaveTypeNameConstraint = "leave_types_name_active_key"

var leaveTypeColumns = []string{"id", "name", "description", "max_days_per_year", "is_paid", "created_at", "updated_at"}

func scanLeaveType(row pgx.Row, l *models.LeaveType) error {
	return row.Scan(&l.ID, &l.Name, &l.Description, &l.MaxDaysPerYear, &l.IsPaid, &l.CreatedAt, &l.UpdatedAt)
}

// LeaveTypeFilter filters the leave type list
type LeaveTypeFilter struct {
	Search string
	Page
}

// LeaveTypeRepository handles leave types
type LeaveTypeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLeaveTypeRepository creates a new LeaveTypeRepository
func NewLeaveTypeRepository(db *pgxpool.Pool) *LeaveTypeRepository {
	return &LeaveTypeRepository{db: db, sb: newBuilder()}
}

// Create inserts a leave type
func (r *LeaveTypeRepository) Create(ctx context.Context, l *models.LeaveType) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("leave_types").
		Columns("name", "description", "max_days_per_year", "is_paid", "created_at", "updated_at").
		Values(l.Name, l.Description, l.MaxDaysPerYear, l.IsPaid, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create leave type query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, leaveTypeNameConstraint) {
			return apperrors.ErrLeaveTypeNameTaken
		}
		logger.Error().Err(err).Str("name", l.Name).Msg("Error creating leave type")
		return fmt.Errorf("error creating leave type: %w", err)
	}
	return nil
}

// NameExists checks, case-insensitively, if an active leave type other than excludeID uses the name
func (r *LeaveTypeRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("leave_types").
		Where(squirrel.Expr("LOWER(name) = LOWER(?)", name)).
		Where(squirrel.Eq{"deleted_at": nil})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "leave type name")
}

// GetByID retrieves an active leave type
func (r *LeaveTypeRepository) GetByID(ctx context.Context, id int64) (*models.LeaveType, error) {
	l := &models.LeaveType{}
	err := queryRow(ctx, r.db, r.sb.Select(leaveTypeColumns...).From("leave_types").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrLeaveTypeNotFound, func(row pgx.Row) error { return scanLeaveType(row, l) })
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List returns a page of active leave types
func (r *LeaveTypeRepository) List(ctx context.Context, f LeaveTypeFilter) ([]models.LeaveType, int64, error) {
	where := squirrel.And{squirrel.Eq{"deleted_at": nil}}
	if f.Search != "" {
		where = append(where, squirrel.ILike{"name": helpers.ContainsPattern(f.Search)})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("leave_types").Where(where), "leave types")
	if err != nil || total == 0 {
		return []models.LeaveType{}, total, err
	}

	list := make([]models.LeaveType, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(leaveTypeColumns...).From("leave_types").Where(where).OrderBy("name"), f.Page),
		func(rows pgx.Rows) error {
			var l models.LeaveType
			if err := scanLeaveType(rows, &l); err != nil {
				return err
			}
			list = append(list, l)
			return nil
		})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leave types: %w", err)
	}
	return list, total, nil
}

// Update writes a leave type
func (r *LeaveTypeRepository) Update(ctx context.Context, l *models.LeaveType) error {
	n, err := exec(ctx, r.db, r.sb.Update("leave_types").
		Set("name", l.Name).
		Set("description", l.Description).
		Set("max_days_per_year", l.MaxDaysPerYear).
		Set("is_paid", l.IsPaid).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": l.ID, "deleted_at": nil}), "update leave type")
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, leaveTypeNameConstraint) {
			return apperrors.ErrLeaveTypeNameTaken
		}
		return fmt.Errorf("error updating leave type: %w", err)
	}
	if n == 0 {
		return apperrors.ErrLeaveTypeNotFound
	}
	return nil
}

// SoftDelete marks a leave type deleted
func (r *LeaveTypeRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDelete(ctx, r.db, r.sb, "leave_types", id, deletedBy, apperrors.ErrLeaveTypeNotFound)
}
