package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
)

// AuditEntry describes one audited action
type AuditEntry struct {
	Actor      Actor
	Action     string
	EntityType string
	EntityID   int64
	Metadata   map[string]interface{}
}

// AuditService records and lists audit logs
type AuditService interface {
	// Record writes the entry in the background. Failures are logged only.
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, req *dto.AuditLogFilterRequest) (*dto.PaginatedResponse, error)
}

type auditServiceImpl struct {
	repo   AuditLogStore
	tasks  *TaskRunner
	logger zerolog.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditLogStore, tasks *TaskRunner, logger zerolog.Logger) AuditService {
	return &auditServiceImpl{repo: repo, tasks: tasks, logger: logger}
}

func (s *auditServiceImpl) Record(ctx context.Context, entry AuditEntry) {
	log := &models.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		Metadata:   entry.Metadata,
		IPAddress:  stringPtrOrNil(entry.Actor.IPAddress),
	}
	if entry.Actor.UserID > 0 {
		log.ActorID = int64Ptr(entry.Actor.UserID)
	}
	if entry.EntityID > 0 {
		log.EntityID = int64Ptr(entry.EntityID)
	}

	s.tasks.Go(ctx, "audit:"+entry.Action, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, log); err != nil {
			s.logger.Warn().Err(err).
				Str("action", entry.Action).
				Str("entityType", entry.EntityType).
				Int64("entityID", entry.EntityID).
				Msg("Failed to write audit log")
		}
		return nil
	})
}

func (s *auditServiceImpl) List(ctx context.Context, req *dto.AuditLogFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	logs, total, err := s.repo.List(ctx, repositories.AuditLogFilter{
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ActorID:    req.ActorID,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	return paginated(logs, total, page), nil
}
