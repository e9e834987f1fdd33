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
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

const studentAdmissionConstraint = "students_admission_no_active_key"

var studentColumns = append([]string{
	"st.id", "st.user_id", "st.admission_no", "st.class_id", "st.roll_number", "st.date_of_birth", "st.gender",
	"st.created_at", "st.updated_at",
}, userColumns...)

func studentDest(s *models.Student) []any {
	s.User = &models.User{}
	return append([]any{&s.ID, &s.UserID, &s.AdmissionNo, &s.ClassID, &s.RollNumber, &s.DateOfBirth, &s.Gender,
		&s.CreatedAt, &s.UpdatedAt}, userDest(s.User)...)
}

// StudentFilter filters the student list
type StudentFilter struct {
	ClassID *int64
	Search  string
	Page
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: newBuilder()}
}

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).From("students st").Join("users u ON u.id = st.user_id")
}

// CreateWithUser creates the user account and the student row in one transaction
func (r *StudentRepository) CreateWithUser(ctx context.Context, s *models.Student) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertUser(ctx, tx, r.sb, s.User); err != nil {
			return err
		}
		s.UserID = s.User.ID

		now := time.Now()
		sql, args, err := r.sb.Insert("students").
			Columns("user_id", "admission_no", "class_id", "roll_number", "date_of_birth", "gender", "created_at", "updated_at").
			Values(s.UserID, s.AdmissionNo, s.ClassID, s.RollNumber, s.DateOfBirth, s.Gender, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create student query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, studentAdmissionConstraint) {
				return apperrors.ErrAdmissionNoTaken
			}
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrClassNotFound
			}
			logger.Error().Err(err).Str("admissionNo", s.AdmissionNo).Msg("Error creating student")
			return fmt.Errorf("error creating student: %w", err)
		}
		return nil
	})
}

// AdmissionNoExists checks if an active student other than excludeID uses the admission number
func (r *StudentRepository) AdmissionNoExists(ctx context.Context, admissionNo string, excludeID int64) (bool, error) {
	q := r.sb.Select("1").From("students").Where(squirrel.Eq{"admission_no": admissionNo, "deleted_at": nil})
	if excludeID > 0 {
		q = q.Where(squirrel.NotEq{"id": excludeID})
	}
	return exists(ctx, r.db, q, "admission number")
}

// GetByID retrieves an active student with the user account
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	s := &models.Student{}
	err := queryRow(ctx, r.db, r.selectStudents().Where(squirrel.Eq{"st.id": id, "st.deleted_at": nil}),
		apperrors.ErrStudentNotFound, func(row pgx.Row) error { return row.Scan(studentDest(s)...) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByUserID retrieves the active student record of a user
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	s := &models.Student{}
	err := queryRow(ctx, r.db, r.selectStudents().Where(squirrel.Eq{"st.user_id": userID, "st.deleted_at": nil}),
		apperrors.ErrStudentNotFound, func(row pgx.Row) error { return row.Scan(studentDest(s)...) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns a page of active students matching the filter
func (r *StudentRepository) List(ctx context.Context, f StudentFilter) ([]*models.Student, int64, error) {
	where := squirrel.And{squirrel.Eq{"st.deleted_at": nil}}
	if f.ClassID != nil {
		where = append(where, squirrel.Eq{"st.class_id": *f.ClassID})
	}
	if f.Search != "" {
		where = append(where, squirrel.Or{searchPerson("u", f.Search), squirrel.ILike{"st.admission_no": helpers.ContainsPattern(f.Search)}})
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("students st").Join("users u ON u.id = st.user_id").Where(where), "students")
	if err != nil || total == 0 {
		return []*models.Student{}, total, err
	}

	list := make([]*models.Student, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.selectStudents().Where(where).
		OrderBy("st.class_id NULLS LAST", "st.roll_number NULLS LAST", "u.first_name", "st.id"), f.Page),
		func(rows pgx.Rows) error {
			s := &models.Student{}
			if err := rows.Scan(studentDest(s)...); err != nil {
				return err
			}
			list = append(list, s)
			return nil
		})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing students")
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return list, total, nil
}

// Update writes student details and the account fields in one transaction
func (r *StudentRepository) Update(ctx context.Context, s *models.Student) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := updatePerson(ctx, tx, r.sb, s.User); err != nil {
			return err
		}
		n, err := exec(ctx, tx, r.sb.Update("students").
			Set("admission_no", s.AdmissionNo).
			Set("class_id", s.ClassID).
			Set("roll_number", s.RollNumber).
			Set("date_of_birth", s.DateOfBirth).
			Set("gender", s.Gender).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": s.ID, "deleted_at": nil}), "update student")
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, studentAdmissionConstraint) {
				return apperrors.ErrAdmissionNoTaken
			}
			if dberrors.IsForeignKeyViolation(err) {
				return apperrors.ErrClassNotFound
			}
			return fmt.Errorf("error updating student: %w", err)
		}
		if n == 0 {
			return apperrors.ErrStudentNotFound
		}
		return nil
	})
}

// SoftDelete removes the student's parent links and marks the student and user deleted
func (r *StudentRepository) SoftDelete(ctx context.Context, s *models.Student, deletedBy int64) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := exec(ctx, tx, r.sb.Delete("parent_students").Where(squirrel.Eq{"student_id": s.ID}), "unlink student"); err != nil {
			return fmt.Errorf("error removing student links: %w", err)
		}
		if err := softDelete(ctx, tx, r.sb, "students", s.ID, deletedBy, apperrors.ErrStudentNotFound); err != nil {
			return err
		}
		return softDeleteUser(ctx, tx, r.sb, s.UserID, deletedBy)
	})
}

// CountActiveInClass counts active students assigned to a class
func (r *StudentRepository) CountActiveInClass(ctx context.Context, classID int64) (int64, error) {
	return count(ctx, r.db, r.sb.Select("COUNT(*)").From("students").
		Where(squirrel.Eq{"class_id": classID, "deleted_at": nil}), "class students")
}
