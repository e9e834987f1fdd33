package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/db"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

const staffEmployeeCodeConstraint = "staff_employee_code_active_key"

var staffColumns = append([]string{
	"s.id", "s.user_id", "s.employee_code", "s.designation", "s.department", "s.join_date", "s.salary",
	"s.created_at", "s.updated_at",
}, userColumns...)

func scanStaff(row pgx.Row, s *models.Staff) error {
	s.User = &models.User{}
	dest := append([]any{&s.ID, &s.UserID, &s.EmployeeCode, &s.Designation, &s.Department, &s.JoinDate, &s.Salary,
		&s.CreatedAt, &s.UpdatedAt}, userDest(s.User)...)
	return row.Scan(dest...)
}

var salaryHistoryColumns = []string{
	"id", "staff_id", "previous_salary", "new_salary", "effective_from", "reason", "changed_by_id", "created_at",
}

func scanSalaryHistory(row pgx.Row, h *models.StaffSalaryHistory) error {
	return row.Scan(&h.ID, &h.StaffID, &h.PreviousSalary, &h.NewSalary, &h.EffectiveFrom, &h.Reason, &h.ChangedByID, &h.CreatedAt)
}

// StaffFilter filters the staff list
type StaffFilter struct {
	Role       models.RoleType
	Department string
	Search     string
	Page
}

// SalaryChange describes one salary update
type SalaryChange struct {
	StaffID       int64
	NewSalary     int64
	EffectiveFrom time.Time
	Reason        *string
	ChangedByID   int64
}

// StaffRepository handles staff and salary history database operations
type StaffRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStaffRepository creates a new StaffRepository
func NewStaffRepository(db *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{db: db, sb: newBuilder()}
}

func (r *StaffRepository) selectStaff() squirrel.SelectBuilder {
	return r.sb.Select(staffColumns...).From("staff s").Join("users u ON u.id = s.user_id")
}

// CreateWithUser creates the user account and the staff row in one transaction
func (r *StaffRepository) CreateWithUser(ctx context.Context, s *models.Staff) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertUser(ctx, tx, r.sb, s.User); err != nil {
			return err
		}
		s.UserID = s.User.ID

		now := time.Now()
		sql, args, err := r.sb.Insert("staff").
			Columns("user_id", "employee_code", "designation", "department", "join_date", "salary", "created_at", "updated_at").
			Values(s.UserID, s.EmployeeCode, s.Designation, s.Department, s.JoinDate, s.Salary, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create staff query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, staffEmployeeCodeConstraint) {
				return apperrors.ErrEmployeeCodeTaken
			}
			logger.Error().Err(err).Str("employeeCode", s.EmployeeCode).Msg("Error creating staff")
			return fmt.Errorf("error creating staff: %w", err)
		}
		return nil
	})
}

// EmployeeCodeExists checks if an active staff member other than excludeID uses the code
func (r *StaffRepository) EmployeeCodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("staff").Where(squirrel.Eq{"employee_code": code, "deleted_at": nil})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "employee code")
}

// GetByID retrieves an active staff member with the user account
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	s := &models.Staff{}
	err := queryRow(ctx, r.db, r.selectStaff().Where(squirrel.Eq{"s.id": id, "s.deleted_at": nil}),
		apperrors.ErrStaffNotFound, func(row pgx.Row) error { return scanStaff(row, s) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByUserID retrieves the active staff record of a user
func (r *StaffRepository) GetByUserID(ctx context.Context, userID int64) (*models.Staff, error) {
	s := &models.Staff{}
	err := queryRow(ctx, r.db, r.selectStaff().Where(squirrel.Eq{"s.user_id": userID, "s.deleted_at": nil}),
		apperrors.ErrStaffNotFound, func(row pgx.Row) error { return scanStaff(row, s) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns a page of active staff matching the filter
func (r *StaffRepository) List(ctx context.Context, f StaffFilter) ([]*models.Staff, int64, error) {
	where := squirrel.And{squirrel.Eq{"s.deleted_at": nil}}
	if f.Role != "" {
		where = append(where, squirrel.Eq{"u.role_type": f.Role})
	}
	if f.Department != "" {
		where = append(where, squirrel.Expr("LOWER(s.department) = LOWER(?)", f.Department))
	}
	if f.Search != "" {
		where = append(where, squirrel.Or{searchPerson("u", f.Search), squirrel.ILike{"s.employee_code": helpers.ContainsPattern(f.Search)}})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("staff s").Join("users u ON u.id = s.user_id").Where(where), "staff")
	if err != nil || total == 0 {
		return []*models.Staff{}, total, err
	}

	list := make([]*models.Staff, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.selectStaff().Where(where).OrderBy("s.employee_code ASC"), f.Page),
		func(rows pgx.Rows) error {
			s := &models.Staff{}
			if err := scanStaff(rows, s); err != nil {
				return err
			}
			list = append(list, s)
			return nil
		})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing staff")
		return nil, 0, fmt.Errorf("failed to list staff: %w", err)
	}
	return list, total, nil
}

// Update writes staff details and the account fields in one transaction
func (r *StaffRepository) Update(ctx context.Context, s *models.Staff) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := updatePerson(ctx, tx, r.sb, s.User); err != nil {
			return err
		}
		n, err := exec(ctx, tx, r.sb.Update("staff").
			Set("employee_code", s.EmployeeCode).
			Set("designation", s.Designation).
			Set("department", s.Department).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": s.ID, "deleted_at": nil}), "update staff")
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, staffEmployeeCodeConstraint) {
				return apperrors.ErrEmployeeCodeTaken
			}
			return fmt.Errorf("error updating staff: %w", err)
		}
		if n == 0 {
			return apperrors.ErrStaffNotFound
		}
		return nil
	})
}

// IsClassTeacher reports whether the staff member leads an active class
func (r *StaffRepository) IsClassTeacher(ctx context.Context, staffID int64) (bool, error) {
	return exists(ctx, r.db, r.sb.Select("1").From("classes").
		Where(squirrel.Eq{"class_teacher_id": staffID, "deleted_at": nil}), "class teacher")
}

// SoftDelete marks the staff row and its user as deleted in one transaction
func (r *StaffRepository) SoftDelete(ctx context.Context, s *models.Staff, deletedBy int64) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := softDelete(ctx, tx, r.sb, "staff", s.ID, deletedBy, apperrors.ErrStaffNotFound); err != nil {
			return err
		}
		return softDeleteUser(ctx, tx, r.sb, s.UserID, deletedBy)
	})
}

// UpdateSalary sets the new salary and records exactly one history row in a single transaction.
// The staff row is locked so concurrent changes record consistent previous values.
func (r *StaffRepository) UpdateSalary(ctx context.Context, c SalaryChange) (*models.StaffSalaryHistory, error) {
	h := &models.StaffSalaryHistory{
		StaffID:       c.StaffID,
		NewSalary:     c.NewSalary,
		EffectiveFrom: c.EffectiveFrom,
		Reason:        c.Reason,
		ChangedByID:   &c.ChangedByID,
	}

	err := db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.salaryLockQuery(c.StaffID).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build salary lock query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&h.PreviousSalary); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrStaffNotFound
			}
			return fmt.Errorf("error locking staff row: %w", err)
		}

		if _, err := exec(ctx, tx, r.salaryUpdateQuery(c, time.Now()), "update salary"); err != nil {
			return fmt.Errorf("error updating salary: %w", err)
		}

		sql, args, err = r.salaryHistoryInsert(h, time.Now()).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build salary history query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&h.ID, &h.CreatedAt); err != nil {
			return fmt.Errorf("error inserting salary history: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrStaffNotFound) {
			logger.Error().Err(err).Int64("staffID", c.StaffID).Msg("Salary update transaction failed")
		}
		return nil, err
	}
	return h, nil
}

func (r *StaffRepository) salaryLockQuery(staffID int64) squirrel.SelectBuilder {
	return r.sb.Select("salary").From("staff").
		Where(squirrel.Eq{"id": staffID, "deleted_at": nil}).
		Suffix("FOR UPDATE")
}

func (r *StaffRepository) salaryUpdateQuery(c SalaryChange, now time.Time) squirrel.UpdateBuilder {
	return r.sb.Update("staff").
		Set("salary", c.NewSalary).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": c.StaffID})
}

func (r *StaffRepository) salaryHistoryInsert(h *models.StaffSalaryHistory, now time.Time) squirrel.InsertBuilder {
	return r.sb.Insert("staff_salary_history").
		Columns("staff_id", "previous_salary", "new_salary", "effective_from", "reason", "changed_by_id", "created_at").
		Values(h.StaffID, h.PreviousSalary, h.NewSalary, h.EffectiveFrom, h.Reason, h.ChangedByID, now).
		Suffix("RETURNING id, created_at")
}

// SalaryHistory returns a page of salary changes, newest first
func (r *StaffRepository) SalaryHistory(ctx context.Context, staffID int64, p Page) ([]models.StaffSalaryHistory, int64, error) {
	where := squirrel.Eq{"staff_id": staffID}
	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("staff_salary_history").Where(where), "salary history")
	if err != nil || total == 0 {
		return []models.StaffSalaryHistory{}, total, err
	}

	list := make([]models.StaffSalaryHistory, 0, p.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(salaryHistoryColumns...).From("staff_salary_history").Where(where).
		OrderBy("effective_from DESC", "id DESC"), p), func(rows pgx.Rows) error {
		var h models.StaffSalaryHistory
		if err := scanSalaryHistory(rows, &h); err != nil {
			return err
		}
		list = append(list, h)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary history: %w", err)
	}
	return list, total, nil
}

// LatestSalaryOn returns the newest history row effective on or before date
func (r *StaffRepository) LatestSalaryOn(ctx context.Context, staffID int64, date time.Time) (*models.StaffSalaryHistory, error) {
	h := &models.StaffSalaryHistory{}
	err := queryRow(ctx, r.db, r.latestSalaryQuery(staffID, date), apperrors.ErrSalaryHistoryNotFound,
		func(row pgx.Row) error { return scanSalaryHistory(row, h) })
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *StaffRepository) latestSalaryQuery(staffID int64, date time.Time) squirrel.SelectBuilder {
	return r.sb.Select(salaryHistoryColumns...).From("staff_salary_history").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.LtOrEq{"effective_from": date}).
		OrderBy("effective_from DESC", "id DESC")
}

// FirstSalaryChangeAfter returns the oldest history row effective after date
func (r *StaffRepository) FirstSalaryChangeAfter(ctx context.Context, staffID int64, date time.Time) (*models.StaffSalaryHistory, error) {
	h := &models.StaffSalaryHistory{}
	err := queryRow(ctx, r.db, r.sb.Select(salaryHistoryColumns...).From("staff_salary_history").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Gt{"effective_from": date}).
		OrderBy("effective_from ASC", "id ASC"), apperrors.ErrSalaryHistoryNotFound,
		func(row pgx.Row) error { return scanSalaryHistory(row, h) })
	if err != nil {
		return nil, err
	}
	return h, nil
}
