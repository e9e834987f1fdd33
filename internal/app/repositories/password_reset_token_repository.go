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
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// PasswordResetTokenRepository manages password reset tokens in the database
type PasswordResetTokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPasswordResetTokenRepository creates a new PasswordResetTokenRepository
func NewPasswordResetTokenRepository(db *pgxpool.Pool) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db, sb: newBuilder()}
}

// Create stores the hash of a new reset token
func (r *PasswordResetTokenRepository) Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	sql, args, err := r.sb.Insert("password_reset_tokens").
		Columns("user_id", "token_hash", "expires_at", "created_at").
		Values(userID, tokenHash, expiresAt, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create reset token query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error creating password reset token")
		return fmt.Errorf("error creating password reset token: %w", err)
	}
	return nil
}

// GetByHash looks a token up by its hash
func (r *PasswordResetTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	t := &models.PasswordResetToken{}
	err := queryRow(ctx, r.db, r.sb.Select("id", "user_id", "token_hash", "expires_at", "used_at", "created_at").
		From("password_reset_tokens").
		Where(squirrel.Eq{"token_hash": tokenHash}), apperrors.ErrInvalidPasswordResetToken,
		func(row pgx.Row) error {
			return row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
		})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Consume marks the token used and stores the new password hash in one transaction
func (r *PasswordResetTokenRepository) Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		n, err := exec(ctx, tx, r.sb.Update("password_reset_tokens").
			Set("used_at", time.Now()).
			Where(squirrel.Eq{"id": tokenID, "used_at": nil}), "mark reset token used")
		if err != nil {
			return fmt.Errorf("error marking token as used: %w", err)
		}
		if n == 0 {
			return apperrors.ErrPasswordResetTokenUsed
		}
		return updatePassword(ctx, tx, r.sb, userID, passwordHash)
	})
}

// PurgeStale deletes used or expired tokens
func (r *PasswordResetTokenRepository) PurgeStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := exec(ctx, r.db, r.sb.Delete("password_reset_tokens").Where(squirrel.Or{
		squirrel.Lt{"expires_at": now},
		squirrel.NotEq{"used_at": nil},
	}), "purge reset tokens")
	if err != nil {
		logger.Error().Err(err).Msg("Error purging password reset tokens")
		return 0, fmt.Errorf("error purging password reset tokens: %w", err)
	}
	return n, nil
}
