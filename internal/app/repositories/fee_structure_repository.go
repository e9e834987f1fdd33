package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

const feeStructureConstraint = "fee_structures_class_year_name_active_key"

var feeStructureColumns = []string{"id", "class_id", "academic_year", "name", "frequency", "created_at", "updated_at"}

func scanFeeStructure(row pgx.Row, f *models.FeeStructure) error {
	return row.Scan(&f.ID, &f.ClassID, &f.AcademicYear, &f.Name, &f.Frequency, &f.CreatedAt, &f.UpdatedAt)
}

// FeeStructureFilter filters the fee structure list
type FeeStructureFilter struct {
	ClassID      *int64
	AcademicYear string
	Page
}

// FeeStructureRepository handles fee structures and their items
type FeeStructureRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFeeStructureRepository creates a new FeeStructureRepository
func NewFeeStructureRepository(db *pgxpool.Pool) *FeeStructureRepository {
	return &FeeStructureRepository{db: db, sb: newBuilder()}
}

func mapFeeWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, feeStructureConstraint):
		return apperrors.ErrFeeStructureExists
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrClassNotFound
	}
	return nil
}

func (r *FeeStructureRepository) insertItems(ctx context.Context, q db.Querier, structureID int64, items []models.FeeStructureItem) error {
	if len(items) == 0 {
		return nil
	}
	b := r.sb.Insert("fee_structure_items").Columns("fee_structure_id", "name", "amount", "is_optional")
	for _, it := range items {
		b = b.Values(structureID, it.Name, it.Amount, it.IsOptional)
	}
	sql, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build fee items query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error inserting fee items: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return fmt.Errorf("error inserting fee items: %w", err)
	}
	for i := range items {
		items[i].ID = ids[i]
		items[i].FeeStructureID = structureID
	}
	return nil
}

// Create inserts a fee structure together with its items
func (r *FeeStructureRepository) Create(ctx context.Context, f *models.FeeStructure) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()
		sql, args, err := r.sb.Insert("fee_structures").
			Columns("class_id", "academic_year", "name", "frequency", "created_at", "updated_at").
			Values(f.ClassID, f.AcademicYear, f.Name, f.Frequency, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create fee structure query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt); err != nil {
			if mapped := mapFeeWriteError(err); mapped != nil {
				return mapped
			}
			logger.Error().Err(err).Str("name", f.Name).Msg("Error creating fee structure")
			return fmt.Errorf("error creating fee structure: %w", err)
		}
		return r.insertItems(ctx, tx, f.ID, f.Items)
	})
}

// Exists checks if an active structure other than excludeID has the same class, year and name
func (r *FeeStructureRepository) Exists(ctx context.Context, classID int64, academicYear, name string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("fee_structures").Where(squirrel.Eq{
		"class_id": classID, "academic_year": academicYear, "name": name, "deleted_at": nil,
	})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "fee structure")
}

// attachItems loads the items of every structure in list
func (r *FeeStructureRepository) attachItems(ctx context.Context, list []models.FeeStructure) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		index[list[i].ID] = i
		list[i].Items = []models.FeeStructureItem{}
	}

	return queryRows(ctx, r.db, r.sb.Select("id", "fee_structure_id", "name", "amount", "is_optional").
		From("fee_structure_items").
		Where(squirrel.Eq{"fee_structure_id": ids}).
		OrderBy("fee_structure_id", "id"), func(rows pgx.Rows) error {
		var it models.FeeStructureItem
		if err := rows.Scan(&it.ID, &it.FeeStructureID, &it.Name, &it.Amount, &it.IsOptional); err != nil {
			return err
		}
		i := index[it.FeeStructureID]
		list[i].Items = append(list[i].Items, it)
		return nil
	})
}

// GetByID retrieves an active fee structure with its items
func (r *FeeStructureRepository) GetByID(ctx context.Context, id int64) (*models.FeeStructure, error) {
	f := models.FeeStructure{}
	err := queryRow(ctx, r.db, r.sb.Select(feeStructureColumns...).From("fee_structures").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrFeeStructureNotFound, func(row pgx.Row) error { return scanFeeStructure(row, &f) })
	if err != nil {
		return nil, err
	}

	list := []models.FeeStructure{f}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to load fee items: %w", err)
	}
	return &list[0], nil
}

func (r *FeeStructureRepository) selectStructures(ctx context.Context, b squirrel.SelectBuilder, capacity int) ([]models.FeeStructure, error) {
	list := make([]models.FeeStructure, 0, capacity)
	err := queryRows(ctx, r.db, b, func(rows pgx.Rows) error {
		var f models.FeeStructure
		if err := scanFeeStructure(rows, &f); err != nil {
			return err
		}
		list = append(list, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// List returns a page of active fee structures with items
func (r *FeeStructureRepository) List(ctx context.Context, f FeeStructureFilter) ([]models.FeeStructure, int64, error) {
	where := squirrel.And{squirrel.Eq{"deleted_at": nil}}
	if f.ClassID != nil {
		where = append(where, squirrel.Eq{"class_id": *f.ClassID})
	}
	if f.AcademicYear != "" {
		where = append(where, squirrel.Eq{"academic_year": f.AcademicYear})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("fee_structures").Where(where), "fee structures")
	if err != nil || total == 0 {
		return []models.FeeStructure{}, total, err
	}

	list, err := r.selectStructures(ctx, paginate(r.sb.Select(feeStructureColumns...).From("fee_structures").Where(where).
		OrderBy("academic_year DESC", "class_id", "name"), f.Page), f.Size)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing fee structures")
		return nil, 0, fmt.Errorf("failed to list fee structures: %w", err)
	}
	return list, total, nil
}

// ListForClassYear returns every active structure of a class in an academic year
func (r *FeeStructureRepository) ListForClassYear(ctx context.Context, classID int64, academicYear string) ([]models.FeeStructure, error) {
	list, err := r.selectStructures(ctx, r.sb.Select(feeStructureColumns...).From("fee_structures").
		Where(squirrel.Eq{"class_id": classID, "academic_year": academicYear, "deleted_at": nil}).
		OrderBy("name"), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to list class fee structures: %w", err)
	}
	return list, nil
}

// Update writes a fee structure. When f.Items is non-nil the item set is replaced.
func (r *FeeStructureRepository) Update(ctx context.Context, f *models.FeeStructure) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := exec(ctx, tx, r.sb.Update("fee_structures").
			Set("class_id", f.ClassID).
			Set("academic_year", f.AcademicYear).
			Set("name", f.Name).
			Set("frequency", f.Frequency).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": f.ID, "deleted_at": nil}), "update fee structure")
		if err != nil {
			if mapped := mapFeeWriteError(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("error updating fee structure: %w", err)
		}
		if n == 0 {
			return apperrors.ErrFeeStructureNotFound
		}
		if f.Items == nil {
			return nil
		}

		if _, err := exec(ctx, tx, r.sb.Delete("fee_structure_items").Where(squirrel.Eq{"fee_structure_id": f.ID}), "replace fee items"); err != nil {
			return fmt.Errorf("error replacing fee items: %w", err)
		}
		return r.insertItems(ctx, tx, f.ID, f.Items)
	})
}

// SoftDelete marks a fee structure deleted. Items stay attached for history.
func (r *FeeStructureRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDelete(ctx, r.db, r.sb, "fee_structures", id, deletedBy, apperrors.ErrFeeStructureNotFound)
}
