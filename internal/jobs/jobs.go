// Package jobs runs periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
)

const defaultJobTimeout = 4 * time.Minute

// Job is one unit of scheduled work
type Job func(ctx context.Context) error

// Scheduler wraps a cron instance whose jobs never overlap with themselves
type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
	logger  zerolog.Logger
}

// NewScheduler creates a Scheduler
func NewScheduler(logger zerolog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		timeout: defaultJobTimeout,
		logger:  logger,
	}
}

// Add schedules job under name. spec uses the standard cron format or descriptors such as "@hourly".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s (%q): %w", name, spec, err)
	}
	s.logger.Info().Str("job", name).Str("spec", spec).Msg("Job scheduled")
	return nil
}

// RunNow executes job once in the caller's goroutine with the usual logging and metrics
func (s *Scheduler) RunNow(name string, job Job) error {
	return s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	elapsed := time.Since(start)
	metrics.RecordJobRun(name, err == nil, elapsed)

	if err != nil {
		s.logger.Error().Err(err).Str("job", name).Dur("duration", elapsed).Msg("Job failed")
		return err
	}
	s.logger.Debug().Str("job", name).Dur("duration", elapsed).Msg("Job finished")
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn().Msg("Timed out waiting for running jobs")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
