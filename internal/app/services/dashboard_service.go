package services

import (
	"context"
	"time"

	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/cache"
)

// DashboardService serves the cached admin counters
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
	// Invalidate drops the cached counters after a change that affects them
	Invalidate(ctx context.Context)
}

type dashboardServiceImpl struct {
	repo  DashboardStore
	cache *cache.Service
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repo DashboardStore, cacheService *cache.Service) DashboardService {
	return &dashboardServiceImpl{repo: repo, cache: cacheService, now: time.Now}
}

func (s *dashboardServiceImpl) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var stats dto.DashboardStats
	err := s.cache.GetOrSet(ctx, cacheKeyDashboard, dashboardCacheTTL, &stats, func(ctx context.Context) (interface{}, error) {
		c, err := s.repo.Counts(ctx)
		if err != nil {
			return nil, err
		}
		return dto.DashboardStats{
			Students:       c.Students,
			Teachers:       c.Teachers,
			Staff:          c.Staff,
			Parents:        c.Parents,
			Rooms:          c.Rooms,
			Classes:        c.Classes,
			LeaveTypes:     c.LeaveTypes,
			MonthlyPayroll: c.MonthlyPayroll,
			GeneratedAt:    s.now().UTC(),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardServiceImpl) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyDashboard)
}
