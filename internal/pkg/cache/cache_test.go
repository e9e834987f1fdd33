package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomList struct {
	Numbers []string `json:"numbers"`
}

func TestMemoryStore_TTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(16)
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "rooms:list:1", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "rooms:list:2", []byte("b"), 0))
	require.NoError(t, store.Set(ctx, "dashboard:stats", []byte("c"), time.Hour))

	got, err := store.Get(ctx, "rooms:list:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "rooms:list:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = store.Get(ctx, "rooms:list:2")
	assert.NoError(t, err, "entries without ttl do not expire")

	require.NoError(t, store.DeletePrefix(ctx, "rooms:"))
	_, err = store.Get(ctx, "rooms:list:2")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = store.Get(ctx, "dashboard:stats")
	assert.NoError(t, err)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	require.NoError(t, store.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), 0))
	_, _ = store.Get(ctx, "a")
	require.NoError(t, store.Set(ctx, "c", []byte("3"), 0))

	_, err := store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 2, store.Len())
}

func TestService_GetOrSet_CachesLoaderResult(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(16), time.Minute)

	calls := 0
	load := func(context.Context) (interface{}, error) {
		calls++
		return roomList{Numbers: []string{"101", "102"}}, nil
	}

	var first, second roomList
	require.NoError(t, svc.GetOrSet(ctx, "rooms", 0, &first, load))
	require.NoError(t, svc.GetOrSet(ctx, "rooms", 0, &second, load))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"101", "102"}, second.Numbers)

	svc.Invalidate(ctx, "rooms")
	require.NoError(t, svc.GetOrSet(ctx, "rooms", 0, &second, load))
	assert.Equal(t, 2, calls)
}

func TestService_GetOrSet_LoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(16), time.Minute)
	boom := errors.New("db down")

	var dest roomList
	err := svc.GetOrSet(ctx, "k", 0, &dest, func(context.Context) (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	err = svc.GetOrSet(ctx, "k", 0, &dest, func(context.Context) (interface{}, error) {
		return roomList{Numbers: []string{"7"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, dest.Numbers)
}

func TestService_GetOrSet_SharesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(16), time.Minute)

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.GetOrSet(ctx, "answer", 0, &results[i], load))
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

type brokenStore struct{ *MemoryStore }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestService_GetOrSet_StoreFailureFallsBackToLoader(t *testing.T) {
	svc := NewService(brokenStore{NewMemoryStore(1)}, time.Minute)

	var dest roomList
	err := svc.GetOrSet(context.Background(), "rooms", 0, &dest, func(context.Context) (interface{}, error) {
		return roomList{Numbers: []string{"A1"}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, dest.Numbers)
}

func TestService_GetOrSet_CancelledCallerDoesNotFailOthers(t *testing.T) {
	svc := NewService(NewMemoryStore(16), time.Minute)

	started := make(chan struct{})
	release := make(chan struct{})
	load := func(ctx context.Context) (interface{}, error) {
		close(started)
		select {
		case <-release:
			return roomList{Numbers: []string{"B-204"}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var dest roomList
		firstErr <- svc.GetOrSet(firstCtx, "rooms:all", 0, &dest, load)
	}()
	<-started

	var second roomList
	secondErr := make(chan error, 1)
	go func() {
		secondErr <- svc.GetOrSet(context.Background(), "rooms:all", 0, &second, load)
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	assert.Equal(t, []string{"B-204"}, second.Numbers)

	var cached roomList
	found, err := svc.Get(context.Background(), "rooms:all", &cached)
	require.NoError(t, err)
	assert.True(t, found)
}
