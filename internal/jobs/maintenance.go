package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job names, also used as metric labels
const (
	JobPurgeSessions    = "purge_sessions"
	JobPurgeResetTokens = "purge_reset_tokens"
)

// SessionPurger deletes sessions that expired or were revoked before the cutoff
type SessionPurger interface {
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// ResetTokenPurger deletes used or expired password reset tokens
type ResetTokenPurger interface {
	PurgeStale(ctx context.Context, now time.Time) (int64, error)
}

// PurgeSessions removes sessions that ended more than retention ago
func PurgeSessions(sessions SessionPurger, retention time.Duration, logger zerolog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := sessions.PurgeStale(ctx, time.Now().Add(-retention))
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info().Int64("deleted", n).Msg("Purged stale sessions")
		}
		return nil
	}
}

// PurgeResetTokens removes password reset tokens that can no longer be used
func PurgeResetTokens(tokens ResetTokenPurger, logger zerolog.Logger) Job {
	return func(ctx context.Context) error {
		n, err := tokens.PurgeStale(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info().Int64("deleted", n).Msg("Purged stale password reset tokens")
		}
		return nil
	}
}
