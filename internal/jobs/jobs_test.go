package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	got time.Time
	n   int64
	err error
}

func (f *fakePurger) PurgeStale(_ context.Context, t time.Time) (int64, error) {
	f.got = t
	return f.n, f.err
}

func TestPurgeSessions_UsesRetentionCutoff(t *testing.T) {
	p := &fakePurger{n: 3}
	before := time.Now()

	require.NoError(t, PurgeSessions(p, 7*24*time.Hour, zerolog.Nop())(context.Background()))

	assert.WithinDuration(t, before.Add(-7*24*time.Hour), p.got, time.Second)
}

func TestPurgeResetTokens_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	err := PurgeResetTokens(&fakePurger{err: boom}, zerolog.Nop())(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestScheduler_AddRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	assert.Error(t, s.Add("broken", "every now and then", func(context.Context) error { return nil }))
	assert.NoError(t, s.Add("hourly", "@hourly", func(context.Context) error { return nil }))
}

func TestScheduler_RunNow(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	var deadline bool
	err := s.RunNow("adhoc", func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, deadline)

	boom := errors.New("failed")
	assert.ErrorIs(t, s.RunNow("adhoc", func(context.Context) error { return boom }), boom)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
