package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
)

func TestTaskRunner_WaitsForTasks(t *testing.T) {
	r := NewTaskRunner(zerolog.Nop())
	var done int32

	for i := 0; i < 5; i++ {
		r.Go(context.Background(), "count", func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		})
	}
	r.Wait()
	assert.Equal(t, int32(5), atomic.LoadInt32(&done))
}

func TestTaskRunner_SurvivesFailuresAndPanics(t *testing.T) {
	r := NewTaskRunner(zerolog.Nop())
	var ran int32

	r.Go(context.Background(), "fails", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return errors.New("smtp unavailable")
	})
	r.Go(context.Background(), "panics", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		panic("boom")
	})
	r.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&ran))
}

func TestTaskRunner_DetachedFromRequestCancel(t *testing.T) {
	r := NewTaskRunner(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var taskErr error
	r.Go(ctx, "detached", func(ctx context.Context) error {
		taskErr = ctx.Err()
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	r.Wait()
	assert.NoError(t, taskErr)
}

func TestActor(t *testing.T) {
	a := Actor{UserID: 3, Role: models.RoleAdmin}
	assert.True(t, a.IsAdmin())
	assert.Equal(t, int64(3), a.Subject().UserID)
	assert.False(t, teacherActor.IsAdmin())
}

func TestPaginated(t *testing.T) {
	resp := paginated([]int{1, 2}, 25, toPage(dto.PageQuery{Page: 2, Size: 10}))
	assert.Equal(t, []int{1, 2}, resp.Items)
	assert.Equal(t, int64(25), resp.Pagination.TotalItems)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestStringPtrOrNil(t *testing.T) {
	assert.Nil(t, stringPtrOrNil(""))
	assert.Equal(t, "x", *stringPtrOrNil("x"))
}
