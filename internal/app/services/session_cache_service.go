package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/cache"
)

// CachedSession is the part of a session the auth middleware needs
type CachedSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionCacheService is a cache-aside view of user_sessions keyed by user and session id
type SessionCacheService interface {
	// GetSession returns the active session sid of userID, or ErrTokenRevoked/ErrTokenExpired
	GetSession(ctx context.Context, userID int64, sid string) (*CachedSession, error)
	Evict(ctx context.Context, userID int64, sid string)
	EvictUser(ctx context.Context, userID int64)
}

type sessionCacheServiceImpl struct {
	repo   SessionStore
	cache  *cache.Service
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewSessionCacheService creates a new SessionCacheService
func NewSessionCacheService(repo SessionStore, cacheService *cache.Service, ttl time.Duration, logger zerolog.Logger) SessionCacheService {
	return &sessionCacheServiceImpl{repo: repo, cache: cacheService, ttl: ttl, now: time.Now, logger: logger}
}

func sessionUserPrefix(userID int64) string {
	return fmt.Sprintf("%s%d:", cachePrefixSession, userID)
}

func sessionKey(userID int64, sid string) string {
	return sessionUserPrefix(userID) + sid
}

func (s *sessionCacheServiceImpl) GetSession(ctx context.Context, userID int64, sid string) (*CachedSession, error) {
	key := sessionKey(userID, sid)

	var cached CachedSession
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Str("sessionID", sid).Msg("Session cache read failed")
	}
	now := s.now()
	if found {
		if now.Before(cached.ExpiresAt) {
			return &cached, nil
		}
		s.cache.Invalidate(ctx, key)
		return nil, apperrors.ErrTokenExpired
	}

	session, err := s.repo.GetByID(ctx, sid)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, err
	}
	if session.UserID != userID || session.RevokedAt != nil {
		return nil, apperrors.ErrTokenRevoked
	}
	if !session.IsActiveAt(now) {
		return nil, apperrors.ErrTokenExpired
	}

	cached = CachedSession{ID: session.ID, UserID: session.UserID, ExpiresAt: session.ExpiresAt}
	if err := s.cache.Set(ctx, key, cached, s.ttlFor(session, now)); err != nil {
		s.logger.Warn().Err(err).Str("sessionID", sid).Msg("Session cache write failed")
	}
	return &cached, nil
}

// ttlFor never lets an entry outlive its session
func (s *sessionCacheServiceImpl) ttlFor(session *models.UserSession, now time.Time) time.Duration {
	remaining := session.ExpiresAt.Sub(now)
	if s.ttl > 0 && s.ttl < remaining {
		return s.ttl
	}
	return remaining
}

func (s *sessionCacheServiceImpl) Evict(ctx context.Context, userID int64, sid string) {
	s.cache.Invalidate(ctx, sessionKey(userID, sid))
}

func (s *sessionCacheServiceImpl) EvictUser(ctx context.Context, userID int64) {
	s.cache.InvalidatePrefix(ctx, sessionUserPrefix(userID))
}
