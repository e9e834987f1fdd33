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

const classUniqueConstraint = "classes_name_section_year_active_key"

var classColumns = []string{"id", "name", "section", "academic_year", "room_id", "class_teacher_id", "created_at", "updated_at"}

func scanClass(row pgx.Row, c *models.Class) error {
	return row.Scan(&c.ID, &c.Name, &c.Section, &c.AcademicYear, &c.RoomID, &c.ClassTeacherID, &c.CreatedAt, &c.UpdatedAt)
}

// ClassFilter filters the class list
type ClassFilter struct {
	AcademicYear string
	Search       string
	Page
}

// ClassRepository handles class sections
type ClassRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewClassRepository creates a new ClassRepository
func NewClassRepository(db *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{db: db, sb: newBuilder()}
}

func mapClassWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, classUniqueConstraint):
		return apperrors.ErrClassAlreadyExists
	case dberrors.IsForeignKeyViolation(err) && dberrors.ConstraintName(err) == "classes_room_id_fkey":
		return apperrors.ErrRoomNotFound
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrStaffNotFound
	}
	return nil
}

// Create inserts a class
func (r *ClassRepository) Create(ctx context.Context, c *models.Class) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("classes").
		Columns("name", "section", "academic_year", "room_id", "class_teacher_id", "created_at", "updated_at").
		Values(c.Name, c.Section, c.AcademicYear, c.RoomID, c.ClassTeacherID, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create class query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if mapped := mapClassWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Str("class", c.Name).Msg("Error creating class")
		return fmt.Errorf("error creating class: %w", err)
	}
	return nil
}

// Exists checks if an active class other than excludeID has the same name, section and year
func (r *ClassRepository) Exists(ctx context.Context, name, section, academicYear string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("classes").Where(squirrel.Eq{
		"name": name, "section": section, "academic_year": academicYear, "deleted_at": nil,
	})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "class")
}

// GetByID retrieves an active class
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	c := &models.Class{}
	err := queryRow(ctx, r.db, r.sb.Select(classColumns...).From("classes").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrClassNotFound, func(row pgx.Row) error { return scanClass(row, c) })
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns a page of active classes
func (r *ClassRepository) List(ctx context.Context, f ClassFilter) ([]models.Class, int64, error) {
	where := squirrel.And{squirrel.Eq{"deleted_at": nil}}
	if f.AcademicYear != "" {
		where = append(where, squirrel.Eq{"academic_year": f.AcademicYear})
	}
	if f.Search != "" {
		where = append(where, squirrel.ILike{"name": helpers.ContainsPattern(f.Search)})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("classes").Where(where), "classes")
	if err != nil || total == 0 {
		return []models.Class{}, total, err
	}

	list := make([]models.Class, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(classColumns...).From("classes").Where(where).
		OrderBy("academic_year DESC", "name", "section"), f.Page), func(rows pgx.Rows) error {
		var c models.Class
		if err := scanClass(rows, &c); err != nil {
			return err
		}
		list = append(list, c)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing classes")
		return nil, 0, fmt.Errorf("failed to list classes: %w", err)
	}
	return list, total, nil
}

// Update writes a class
func (r *ClassRepository) Update(ctx context.Context, c *models.Class) error {
	n, err := exec(ctx, r.db, r.sb.Update("classes").
		Set("name", c.Name).
		Set("section", c.Section).
		Set("academic_year", c.AcademicYear).
		Set("room_id", c.RoomID).
		Set("class_teacher_id", c.ClassTeacherID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": c.ID, "deleted_at": nil}), "update class")
	if err != nil {
		if mapped := mapClassWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("classID", c.ID).Msg("Error updating class")
		return fmt.Errorf("error updating class: %w", err)
	}
	if n == 0 {
		return apperrors.ErrClassNotFound
	}
	return nil
}

// SoftDelete marks a class deleted
func (r *ClassRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDelete(ctx, r.db, r.sb, "classes", id, deletedBy, apperrors.ErrClassNotFound)
}
