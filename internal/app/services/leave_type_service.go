package services

import (
	"context"
	"strings"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// LeaveTypeService manages the configured kinds of leave
type LeaveTypeService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateLeaveTypeRequest) (*models.LeaveType, error)
	List(ctx context.Context, req *dto.LeaveTypeFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*models.LeaveType, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateLeaveTypeRequest) (*models.LeaveType, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}

type leaveTypeServiceImpl struct {
	repo      LeaveTypeStore
	audit     AuditService
	dashboard DashboardService
}

// NewLeaveTypeService creates a new LeaveTypeService
func NewLeaveTypeService(repo LeaveTypeStore, audit AuditService, dashboard DashboardService) LeaveTypeService {
	return &leaveTypeServiceImpl{repo: repo, audit: audit, dashboard: dashboard}
}

func (s *leaveTypeServiceImpl) checkName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.repo.NameExists(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrLeaveTypeNameTaken
	}
	return nil
}

func (s *leaveTypeServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateLeaveTypeRequest) (*models.LeaveType, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	lt := &models.LeaveType{
		Name:           name,
		Description:    req.Description,
		MaxDaysPerYear: req.MaxDaysPerYear,
		IsPaid:         req.IsPaid == nil || *req.IsPaid,
	}
	if err := s.repo.Create(ctx, lt); err != nil {
		return nil, err
	}

	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "leave_type", EntityID: lt.ID,
		Metadata: map[string]interface{}{"name": lt.Name}})
	return lt, nil
}

func (s *leaveTypeServiceImpl) List(ctx context.Context, req *dto.LeaveTypeFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.repo.List(ctx, repositories.LeaveTypeFilter{Search: req.Search, Page: page})
	if err != nil {
		return nil, err
	}
	return paginated(list, total, page), nil
}

func (s *leaveTypeServiceImpl) Get(ctx context.Context, id int64) (*models.LeaveType, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *leaveTypeServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateLeaveTypeRequest) (*models.LeaveType, error) {
	lt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, lt.Name) {
			if err := s.checkName(ctx, name, lt.ID); err != nil {
				return nil, err
			}
		}
		lt.Name = name
	}
	if req.Description != nil {
		lt.Description = stringPtrOrNil(*req.Description)
	}
	if req.MaxDaysPerYear != nil {
		lt.MaxDaysPerYear = *req.MaxDaysPerYear
	}
	if req.IsPaid != nil {
		lt.IsPaid = *req.IsPaid
	}

	if err := s.repo.Update(ctx, lt); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "leave_type", EntityID: lt.ID})
	return lt, nil
}

func (s *leaveTypeServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.repo.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "leave_type", EntityID: id})
	return nil
}
