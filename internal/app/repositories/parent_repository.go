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

var parentColumns = append([]string{
	"p.id", "p.user_id", "p.occupation", "p.address", "p.created_at", "p.updated_at",
}, userColumns...)

func parentDest(p *models.Parent) []any {
	p.User = &models.User{}
	return append([]any{&p.ID, &p.UserID, &p.Occupation, &p.Address, &p.CreatedAt, &p.UpdatedAt}, userDest(p.User)...)
}

// ParentFilter filters the parent list
type ParentFilter struct {
	Search string
	Page
}

// ParentRepository handles parents and their links to students
type ParentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewParentRepository creates a new ParentRepository
func NewParentRepository(db *pgxpool.Pool) *ParentRepository {
	return &ParentRepository{db: db, sb: newBuilder()}
}

func (r *ParentRepository) selectParents() squirrel.SelectBuilder {
	return r.sb.Select(parentColumns...).From("parents p").Join("users u ON u.id = p.user_id")
}

// CreateWithUser creates the user account and the parent row in one transaction
func (r *ParentRepository) CreateWithUser(ctx context.Context, p *models.Parent) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertUser(ctx, tx, r.sb, p.User); err != nil {
			return err
		}
		p.UserID = p.User.ID

		now := time.Now()
		sql, args, err := r.sb.Insert("parents").
			Columns("user_id", "occupation", "address", "created_at", "updated_at").
			Values(p.UserID, p.Occupation, p.Address, now, now).
			Suffix("RETURNING id, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create parent query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error().Err(err).Int64("userID", p.UserID).Msg("Error creating parent")
			return fmt.Errorf("error creating parent: %w", err)
		}
		return nil
	})
}

// GetByID retrieves an active parent with the user account
func (r *ParentRepository) GetByID(ctx context.Context, id int64) (*models.Parent, error) {
	p := &models.Parent{}
	err := queryRow(ctx, r.db, r.selectParents().Where(squirrel.Eq{"p.id": id, "p.deleted_at": nil}),
		apperrors.ErrParentNotFound, func(row pgx.Row) error { return row.Scan(parentDest(p)...) })
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUserID retrieves the active parent record of a user
func (r *ParentRepository) GetByUserID(ctx context.Context, userID int64) (*models.Parent, error) {
	p := &models.Parent{}
	err := queryRow(ctx, r.db, r.selectParents().Where(squirrel.Eq{"p.user_id": userID, "p.deleted_at": nil}),
		apperrors.ErrParentNotFound, func(row pgx.Row) error { return row.Scan(parentDest(p)...) })
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns a page of active parents
func (r *ParentRepository) List(ctx context.Context, f ParentFilter) ([]*models.Parent, int64, error) {
	where := squirrel.And{squirrel.Eq{"p.deleted_at": nil}}
	if f.Search != "" {
		where = append(where, searchPerson("u", f.Search))
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("parents p").Join("users u ON u.id = p.user_id").Where(where), "parents")
	if err != nil || total == 0 {
		return []*models.Parent{}, total, err
	}

	list := make([]*models.Parent, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.selectParents().Where(where).OrderBy("u.last_name", "u.first_name", "p.id"), f.Page),
		func(rows pgx.Rows) error {
			p := &models.Parent{}
			if err := rows.Scan(parentDest(p)...); err != nil {
				return err
			}
			list = append(list, p)
			return nil
		})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing parents")
		return nil, 0, fmt.Errorf("failed to list parents: %w", err)
	}
	return list, total, nil
}

// Update writes parent details and the account fields in one transaction
func (r *ParentRepository) Update(ctx context.Context, p *models.Parent) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if err := updatePerson(ctx, tx, r.sb, p.User); err != nil {
			return err
		}
		n, err := exec(ctx, tx, r.sb.Update("parents").
			Set("occupation", p.Occupation).
			Set("address", p.Address).
			Set("updated_at", time.Now()).
			Where(squirrel.Eq{"id": p.ID, "deleted_at": nil}), "update parent")
		if err != nil {
			return fmt.Errorf("error updating parent: %w", err)
		}
		if n == 0 {
			return apperrors.ErrParentNotFound
		}
		return nil
	})
}

// SoftDelete removes the parent's links and marks the parent and user deleted
func (r *ParentRepository) SoftDelete(ctx context.Context, p *models.Parent, deletedBy int64) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := exec(ctx, tx, r.sb.Delete("parent_students").Where(squirrel.Eq{"parent_id": p.ID}), "unlink parent"); err != nil {
			return fmt.Errorf("error removing parent links: %w", err)
		}
		if err := softDelete(ctx, tx, r.sb, "parents", p.ID, deletedBy, apperrors.ErrParentNotFound); err != nil {
			return err
		}
		return softDeleteUser(ctx, tx, r.sb, p.UserID, deletedBy)
	})
}

// LinkStudent adds a parent/student link
func (r *ParentRepository) LinkStudent(ctx context.Context, parentID, studentID int64, relationship string) error {
	sql, args, err := r.sb.Insert("parent_students").
		Columns("parent_id", "student_id", "relationship", "created_at").
		Values(parentID, studentID, relationship, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build link query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "parent_students_pkey") {
			return apperrors.ErrParentStudentLinked
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("parentID", parentID).Int64("studentID", studentID).Msg("Error linking student")
		return fmt.Errorf("error linking student: %w", err)
	}
	return nil
}

// UnlinkStudent removes a parent/student link
func (r *ParentRepository) UnlinkStudent(ctx context.Context, parentID, studentID int64) error {
	n, err := exec(ctx, r.db, r.sb.Delete("parent_students").
		Where(squirrel.Eq{"parent_id": parentID, "student_id": studentID}), "unlink student")
	if err != nil {
		return fmt.Errorf("error unlinking student: %w", err)
	}
	if n == 0 {
		return apperrors.ErrParentStudentNotFound
	}
	return nil
}

// IsLinked reports whether the parent is linked to the student
func (r *ParentRepository) IsLinked(ctx context.Context, parentID, studentID int64) (bool, error) {
	return exists(ctx, r.db, r.sb.Select("1").From("parent_students").
		Where(squirrel.Eq{"parent_id": parentID, "student_id": studentID}), "parent link")
}

// ListStudents returns the active students linked to a parent
func (r *ParentRepository) ListStudents(ctx context.Context, parentID int64) ([]models.StudentLink, error) {
	cols := append([]string{"ps.relationship"}, studentColumns...)
	links := []models.StudentLink{}
	err := queryRows(ctx, r.db, r.sb.Select(cols...).From("parent_students ps").
		Join("students st ON st.id = ps.student_id").
		Join("users u ON u.id = st.user_id").
		Where(squirrel.Eq{"ps.parent_id": parentID, "st.deleted_at": nil}).
		OrderBy("u.first_name", "st.id"), func(rows pgx.Rows) error {
		link := models.StudentLink{Student: &models.Student{}}
		if err := rows.Scan(append([]any{&link.Relationship}, studentDest(link.Student)...)...); err != nil {
			return err
		}
		links = append(links, link)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list parent's students: %w", err)
	}
	return links, nil
}

// ListParentsOfStudent returns the active parents linked to a student
func (r *ParentRepository) ListParentsOfStudent(ctx context.Context, studentID int64) ([]models.ParentLink, error) {
	cols := append([]string{"ps.relationship"}, parentColumns...)
	links := []models.ParentLink{}
	err := queryRows(ctx, r.db, r.sb.Select(cols...).From("parent_students ps").
		Join("parents p ON p.id = ps.parent_id").
		Join("users u ON u.id = p.user_id").
		Where(squirrel.Eq{"ps.student_id": studentID, "p.deleted_at": nil}).
		OrderBy("u.first_name", "p.id"), func(rows pgx.Rows) error {
		link := models.ParentLink{Parent: &models.Parent{}}
		if err := rows.Scan(append([]any{&link.Relationship}, parentDest(link.Parent)...)...); err != nil {
			return err
		}
		links = append(links, link)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list student's parents: %w", err)
	}
	return links, nil
}
