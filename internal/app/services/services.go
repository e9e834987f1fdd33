package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID    int64
	Role      models.RoleType
	SessionID string
	IPAddress string
	UserAgent string
}

// IsAdmin reports whether the caller is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Subject returns the caller in the form the access checks take
func (a Actor) Subject() appAuth.Subject {
	return appAuth.Subject{UserID: a.UserID, Role: a.Role}
}

// defaultTaskTimeout bounds fire-and-forget work such as audit writes and notifications
const defaultTaskTimeout = 15 * time.Second

// TaskRunner runs fire-and-forget work detached from the request context.
// Failures are logged and never reach the caller.
type TaskRunner struct {
	wg      sync.WaitGroup
	timeout time.Duration
	logger  zerolog.Logger
}

// NewTaskRunner creates a TaskRunner
func NewTaskRunner(logger zerolog.Logger) *TaskRunner {
	return &TaskRunner{timeout: defaultTaskTimeout, logger: logger}
}

// Go runs fn in a goroutine with a fresh deadline. Values of ctx stay visible, its cancellation does not.
func (r *TaskRunner) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error().Interface("panic", rec).Str("task", name).Msg("Background task panicked")
			}
		}()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := fn(taskCtx); err != nil {
			r.logger.Error().Err(err).Str("task", name).Msg("Background task failed")
		}
	}()
}

// Wait blocks until every started task has finished
func (r *TaskRunner) Wait() {
	r.wg.Wait()
}

// Cache keys and TTLs
const (
	cacheKeyDashboard  = "dashboard:stats"
	cachePrefixRooms   = "rooms:"
	cachePrefixSession = "session:"
	dashboardCacheTTL  = 60 * time.Second
	roomListCacheTTL   = 5 * time.Minute
)

func toPage(q dto.PageQuery) repositories.Page {
	return repositories.Page{Page: q.Page, Size: q.Size}
}

func paginated(items interface{}, total int64, p repositories.Page) *dto.PaginatedResponse {
	return &dto.PaginatedResponse{
		Items:      items,
		Pagination: helpers.NewWindow(p.Page, p.Size).Info(total),
	}
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
