package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a cache miss
type Loader func(ctx context.Context) (interface{}, error)

// Service implements cache-aside on top of a Store. Values are JSON encoded.
type Service struct {
	store      Store
	defaultTTL time.Duration
	group      singleflight.Group
}

// NewService creates a cache service
func NewService(store Store, defaultTTL time.Duration) *Service {
	return &Service{store: store, defaultTTL: defaultTTL}
}

// Store returns the underlying store
func (s *Service) Store() Store {
	return s.store
}

// Get decodes the cached value for key into dest and reports whether it was found
func (s *Service) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		metrics.CacheMiss()
		return false, nil
	}
	if err != nil {
		metrics.CacheError()
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheError()
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	metrics.CacheHit()
	return true, nil
}

// Set stores value under key. A zero ttl uses the service default.
func (s *Service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return s.store.Set(ctx, key, raw, s.ttl(ttl))
}

// LoadTimeout bounds a shared load, which runs detached from any single caller
const LoadTimeout = 15 * time.Second

// GetOrSet returns the cached value for key in dest, calling load on a miss and caching its result.
// Concurrent misses for one key share a single load. The load outlives a caller that gives up,
// so other waiters still get its result. Load errors are returned and never cached.
// Store failures are logged and the loaded value is still returned.
func (s *Service) GetOrSet(ctx context.Context, key string, ttl time.Duration, dest interface{}, load Loader) error {
	found, err := s.Get(ctx, key, dest)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling back to loader")
	}
	if found {
		return nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(detached, LoadTimeout)
		defer cancel()

		value, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %q: %w", key, err)
		}
		if err := s.store.Set(loadCtx, key, encoded, s.ttl(ttl)); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		}
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Invalidate removes keys
func (s *Service) Invalidate(ctx context.Context, keys ...string) {
	if err := s.store.Delete(ctx, keys...); err != nil {
		logger.Warn().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
	}
}

// InvalidatePrefix removes every key starting with prefix
func (s *Service) InvalidatePrefix(ctx context.Context, prefix string) {
	if err := s.store.DeletePrefix(ctx, prefix); err != nil {
		logger.Warn().Err(err).Str("prefix", prefix).Msg("Cache prefix invalidation failed")
	}
}

func (s *Service) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.defaultTTL
	}
	return ttl
}
