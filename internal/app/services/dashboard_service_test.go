package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/cache"
)

type fakeDashboardStore struct {
	counts repositories.DashboardCounts
	calls  int
	err    error
}

func (f *fakeDashboardStore) Counts(context.Context) (*repositories.DashboardCounts, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c := f.counts
	return &c, nil
}

func TestDashboardService_StatsCachedAndInvalidated(t *testing.T) {
	store := &fakeDashboardStore{counts: repositories.DashboardCounts{Students: 120, Teachers: 9, Staff: 14, MonthlyPayroll: 63000000}}
	svc := &dashboardServiceImpl{repo: store, cache: cache.NewService(cache.NewMemoryStore(16), 0), now: clock}
	ctx := context.Background()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.Students)
	assert.Equal(t, int64(63000000), stats.MonthlyPayroll)
	assert.True(t, stats.GeneratedAt.Equal(fixedNow))

	store.counts.Students = 121
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(120), stats.Students, "served from cache")
	assert.Equal(t, 1, store.calls)

	svc.Invalidate(ctx)
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(121), stats.Students)
	assert.Equal(t, 2, store.calls)
}

func TestDashboardService_ErrorsAreNotCached(t *testing.T) {
	store := &fakeDashboardStore{err: errors.New("db down")}
	svc := NewDashboardService(store, cache.NewService(cache.NewMemoryStore(16), 0))
	ctx := context.Background()

	_, err := svc.Stats(ctx)
	require.Error(t, err)

	store.err = nil
	_, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}
