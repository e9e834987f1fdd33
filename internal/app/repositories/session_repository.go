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
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

var sessionColumns = []string{
	"id", "user_id", "refresh_token", "user_agent", "ip_address", "expires_at", "revoked_at", "created_at", "updated_at",
}

func scanSession(row pgx.Row, s *models.UserSession) error {
	return row.Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.UserAgent, &s.IPAddress, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.UpdatedAt)
}

// SessionRepository handles login sessions ('user_sessions')
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db, sb: newBuilder()}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, s *models.UserSession) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("user_sessions").
		Columns("id", "user_id", "refresh_token", "user_agent", "ip_address", "expires_at", "created_at", "updated_at").
		Values(s.ID, s.UserID, s.RefreshToken, s.UserAgent, s.IPAddress, s.ExpiresAt, now, now).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "user_sessions_refresh_token_key") {
			logger.Warn().Int64("userID", s.UserID).Msg("Attempted to create duplicate refresh token")
			return apperrors.ErrTokenInvalid
		}
		logger.Error().Err(err).Int64("userID", s.UserID).Msg("Error executing create session query")
		return fmt.Errorf("error creating session: %w", err)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

// GetByID returns a session whether or not it is still active
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.UserSession, error) {
	s := &models.UserSession{}
	err := queryRow(ctx, r.db, r.sb.Select(sessionColumns...).From("user_sessions").
		Where(squirrel.Eq{"id": id}), apperrors.ErrSessionNotFound,
		func(row pgx.Row) error { return scanSession(row, s) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByRefreshToken looks a session up by its current refresh token
func (r *SessionRepository) GetByRefreshToken(ctx context.Context, token string) (*models.UserSession, error) {
	s := &models.UserSession{}
	err := queryRow(ctx, r.db, r.sb.Select(sessionColumns...).From("user_sessions").
		Where(squirrel.Eq{"refresh_token": token}), apperrors.ErrTokenNotFound,
		func(row pgx.Row) error { return scanSession(row, s) })
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Rotate replaces the refresh token of an active session
func (r *SessionRepository) Rotate(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) error {
	n, err := exec(ctx, r.db, r.sb.Update("user_sessions").
		Set("refresh_token", newToken).
		Set("expires_at", expiresAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "refresh_token": oldToken, "revoked_at": nil}), "rotate session")
	if err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error rotating session")
		return fmt.Errorf("error rotating session: %w", err)
	}
	if n == 0 {
		return apperrors.ErrTokenRevoked
	}
	return nil
}

// Revoke revokes one session. Revoking an already revoked session is not an error.
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	if _, err := exec(ctx, r.db, r.sb.Update("user_sessions").
		Set("revoked_at", time.Now()).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "revoked_at": nil}), "revoke session"); err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error revoking session")
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// RevokeAllForUser revokes every active session of a user except keepID and returns the revoked ids
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID int64, keepID string) ([]string, error) {
	where := squirrel.And{squirrel.Eq{"user_id": userID, "revoked_at": nil}}
	if keepID != "" {
		where = append(where, squirrel.NotEq{"id": keepID})
	}

	sql, args, err := r.sb.Update("user_sessions").
		Set("revoked_at", time.Now()).
		Set("updated_at", time.Now()).
		Where(where).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build revoke sessions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error revoking user sessions")
		return nil, fmt.Errorf("error revoking user sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error reading revoked sessions: %w", err)
	}
	return ids, nil
}

// PurgeStale deletes sessions that expired or were revoked before the cutoff
func (r *SessionRepository) PurgeStale(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := exec(ctx, r.db, r.sb.Delete("user_sessions").Where(squirrel.Or{
		squirrel.Lt{"expires_at": cutoff},
		squirrel.Lt{"revoked_at": cutoff},
	}), "purge sessions")
	if err != nil {
		logger.Error().Err(err).Msg("Error purging sessions")
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return n, nil
}
