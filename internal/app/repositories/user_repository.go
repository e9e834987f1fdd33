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

const userEmailConstraint = "users_email_active_key"

var userColumns = []string{
	"u.id", "u.email", "u.password_hash", "u.first_name", "u.last_name", "u.phone", "u.role_type",
	"u.is_active", "u.avatar_key", "u.last_login_at", "u.created_at", "u.updated_at",
}

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.RoleType,
		&u.IsActive, &u.AvatarKey, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
}

// userDest returns scan targets for the user columns, for joined queries
func userDest(u *models.User) []any {
	return []any{&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.RoleType,
		&u.IsActive, &u.AvatarKey, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt}
}

// insertUser creates a user row inside the caller's transaction
func insertUser(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, u *models.User) error {
	now := time.Now()
	sql, args, err := sb.Insert("users").
		Columns("email", "password_hash", "first_name", "last_name", "phone", "role_type", "is_active", "created_at", "updated_at").
		Values(u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.RoleType, u.IsActive, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := q.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, userEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", u.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// updatePerson writes the shared account fields of a user inside the caller's transaction
func updatePerson(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, u *models.User) error {
	n, err := exec(ctx, q, sb.Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("phone", u.Phone).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": u.ID, "deleted_at": nil}), "update user")
	if err != nil {
		return fmt.Errorf("error updating user: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UserFilter filters the user list
type UserFilter struct {
	Role     models.RoleType
	Search   string
	IsActive *bool
	Page
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

// Create creates a standalone user (used for admin accounts)
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return insertUser(ctx, r.db, r.sb, u)
}

// GetByID retrieves an active (not deleted) user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	err := queryRow(ctx, r.db, r.sb.Select(userColumns...).From("users u").
		Where(squirrel.Eq{"u.id": id, "u.deleted_at": nil}), apperrors.ErrUserNotFound,
		func(row pgx.Row) error { return scanUser(row, u) })
	if err != nil {
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			logger.Error().Err(err).Int64("userID", id).Msg("Error retrieving user")
		}
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves an active user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	err := queryRow(ctx, r.db, r.sb.Select(userColumns...).From("users u").
		Where(squirrel.Expr("LOWER(u.email) = LOWER(?)", email)).
		Where(squirrel.Eq{"u.deleted_at": nil}), apperrors.ErrUserNotFound,
		func(row pgx.Row) error { return scanUser(row, u) })
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EmailExists checks if an active user already uses the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, r.sb.Select("1").From("users").
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Where(squirrel.Eq{"deleted_at": nil}), "user email")
}

// List returns a page of active users matching the filter
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]*models.User, int64, error) {
	where := squirrel.And{squirrel.Eq{"u.deleted_at": nil}}
	if f.Role != "" {
		where = append(where, squirrel.Eq{"u.role_type": f.Role})
	}
	if f.IsActive != nil {
		where = append(where, squirrel.Eq{"u.is_active": *f.IsActive})
	}
	if f.Search != "" {
		where = append(where, searchPerson("u", f.Search))
	}

	total, err := count(ctx, r.db, r.sb.Select("COUNT(*)").From("users u").Where(where), "users")
	if err != nil || total == 0 {
		return []*models.User{}, total, err
	}

	users := make([]*models.User, 0, f.Size)
	err = queryRows(ctx, r.db, paginate(r.sb.Select(userColumns...).From("users u").Where(where).
		OrderBy("u.last_name ASC", "u.first_name ASC", "u.id ASC"), f.Page), func(rows pgx.Rows) error {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListActiveByRoles returns every active user with one of the roles, for notice delivery
func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles []models.RoleType) ([]*models.User, error) {
	users := []*models.User{}
	if len(roles) == 0 {
		return users, nil
	}
	err := queryRows(ctx, r.db, r.sb.Select(userColumns...).From("users u").
		Where(squirrel.Eq{"u.role_type": roles, "u.is_active": true, "u.deleted_at": nil}).
		OrderBy("u.id"), func(rows pgx.Rows) error {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// Update writes the admin-editable fields of a user
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	n, err := exec(ctx, r.db, r.sb.Update("users").
		Set("first_name", u.FirstName).
		Set("last_name", u.LastName).
		Set("phone", u.Phone).
		Set("is_active", u.IsActive).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": u.ID, "deleted_at": nil}), "update user")
	if err != nil {
		logger.Error().Err(err).Int64("userID", u.ID).Msg("Error updating user")
		return fmt.Errorf("error updating user: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	return updatePassword(ctx, r.db, r.sb, userID, hash)
}

func updatePassword(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, userID int64, hash string) error {
	n, err := exec(ctx, q, sb.Update("users").
		Set("password_hash", hash).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID, "deleted_at": nil}), "update password")
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	if _, err := exec(ctx, r.db, r.sb.Update("users").
		Set("last_login_at", time.Now()).
		Where(squirrel.Eq{"id": userID}), "update last login"); err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	return nil
}

// UpdateAvatarKey sets or clears (nil) the stored avatar key
func (r *UserRepository) UpdateAvatarKey(ctx context.Context, userID int64, key *string) error {
	n, err := exec(ctx, r.db, r.sb.Update("users").
		Set("avatar_key", key).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID, "deleted_at": nil}), "update avatar")
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SoftDelete marks a user as deleted and inactive
func (r *UserRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDeleteUser(ctx, r.db, r.sb, id, deletedBy)
}

func softDeleteUser(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, id, deletedBy int64) error {
	n, err := exec(ctx, q, sb.Update("users").
		Set("deleted_at", time.Now()).
		Set("deleted_by_id", deletedBy).
		Set("is_active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "deleted_at": nil}), "delete user")
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error deleting user")
		return fmt.Errorf("error deleting user: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// searchPerson matches first name, last name, full name or email of the aliased users table
func searchPerson(alias, search string) squirrel.Sqlizer {
	pattern := helpers.ContainsPattern(search)
	return squirrel.Or{
		squirrel.ILike{alias + ".first_name": pattern},
		squirrel.ILike{alias + ".last_name": pattern},
		squirrel.ILike{alias + ".email": pattern},
		squirrel.Expr(alias+".first_name || ' ' || "+alias+".last_name ILIKE ?", pattern),
	}
}
