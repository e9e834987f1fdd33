package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// StaffSalaryService changes salaries and answers salary history questions
type StaffSalaryService interface {
	// UpdateStaffSalary writes the new salary and exactly one history row atomically
	UpdateStaffSalary(ctx context.Context, actor Actor, staffID int64, req *dto.UpdateSalaryRequest) (*dto.SalaryUpdateResponse, error)
	SalaryHistory(ctx context.Context, actor Actor, staffID int64, page dto.PageQuery) (*dto.PaginatedResponse, error)
	EffectiveSalary(ctx context.Context, actor Actor, staffID int64, date string) (*dto.EffectiveSalaryResponse, error)
}

type staffSalaryServiceImpl struct {
	repo      SalaryStore
	mailer    email.EmailService
	audit     AuditService
	dashboard DashboardService
	tasks     *TaskRunner
	avatarURL dto.AvatarURLFunc
	now       func() time.Time
	logger    zerolog.Logger
}

// NewStaffSalaryService creates a new StaffSalaryService
func NewStaffSalaryService(
	repo SalaryStore,
	mailer email.EmailService,
	audit AuditService,
	dashboard DashboardService,
	tasks *TaskRunner,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) StaffSalaryService {
	return &staffSalaryServiceImpl{
		repo:      repo,
		mailer:    mailer,
		audit:     audit,
		dashboard: dashboard,
		tasks:     tasks,
		avatarURL: avatarURL,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *staffSalaryServiceImpl) UpdateStaffSalary(ctx context.Context, actor Actor, staffID int64, req *dto.UpdateSalaryRequest) (*dto.SalaryUpdateResponse, error) {
	if req.Salary == nil || *req.Salary < 0 {
		return nil, apperrors.NewBadRequestError("salary must be zero or positive")
	}
	member, err := s.repo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}

	effectiveFrom, err := helpers.ParseDateOr(req.EffectiveFrom, s.now())
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if effectiveFrom.Before(helpers.TruncateToDate(member.JoinDate)) {
		return nil, apperrors.NewBadRequestError("effectiveFrom cannot be before the join date")
	}

	history, err := s.repo.UpdateSalary(ctx, repositories.SalaryChange{
		StaffID:       member.ID,
		NewSalary:     *req.Salary,
		EffectiveFrom: effectiveFrom,
		Reason:        stringPtrOrNil(req.Reason),
		ChangedByID:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	member.Salary = history.NewSalary

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditSalaryUpdate,
		EntityType: "staff",
		EntityID:   member.ID,
		Metadata: map[string]interface{}{
			"historyId":      history.ID,
			"previousSalary": history.PreviousSalary,
			"newSalary":      history.NewSalary,
			"effectiveFrom":  helpers.FormatDate(history.EffectiveFrom),
		},
	})
	s.notify(ctx, member, history)
	s.dashboard.Invalidate(ctx)

	return &dto.SalaryUpdateResponse{
		Staff:   staffResponse(member, s.avatarURL),
		History: salaryHistoryResponse(history),
	}, nil
}

func (s *staffSalaryServiceImpl) notify(ctx context.Context, member *models.Staff, h *models.StaffSalaryHistory) {
	if member.User == nil {
		return
	}
	to := email.Recipient{Name: member.User.FullName(), Email: member.User.Email}
	data := email.SalaryUpdatedData{
		Name:          member.User.FullName(),
		Previous:      helpers.FormatMinorUnits(h.PreviousSalary),
		New:           helpers.FormatMinorUnits(h.NewSalary),
		EffectiveFrom: helpers.FormatDate(h.EffectiveFrom),
	}
	if h.Reason != nil {
		data.Reason = *h.Reason
	}
	s.tasks.Go(ctx, "email:salary-updated", func(ctx context.Context) error {
		return s.mailer.SendSalaryUpdated(ctx, to, data)
	})
}

func (s *staffSalaryServiceImpl) SalaryHistory(ctx context.Context, actor Actor, staffID int64, q dto.PageQuery) (*dto.PaginatedResponse, error) {
	if _, err := loadStaffFor(ctx, s.repo, actor, staffID); err != nil {
		return nil, err
	}

	page := toPage(q)
	list, total, err := s.repo.SalaryHistory(ctx, staffID, page)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SalaryHistoryResponse, 0, len(list))
	for i := range list {
		items = append(items, salaryHistoryResponse(&list[i]))
	}
	return paginated(items, total, page), nil
}

// EffectiveSalary resolves the salary in force on date (today when empty):
// the newest change effective on or before date, else the salary replaced by the first later
// change, else the current salary. Dates before the join date have no salary.
func (s *staffSalaryServiceImpl) EffectiveSalary(ctx context.Context, actor Actor, staffID int64, date string) (*dto.EffectiveSalaryResponse, error) {
	member, err := loadStaffFor(ctx, s.repo, actor, staffID)
	if err != nil {
		return nil, err
	}
	on, err := helpers.ParseDateOr(date, s.now())
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if on.Before(helpers.TruncateToDate(member.JoinDate)) {
		return nil, apperrors.ErrSalaryNotEffective
	}

	resp := &dto.EffectiveSalaryResponse{StaffID: member.ID, Date: helpers.FormatDate(on)}

	latest, err := s.repo.LatestSalaryOn(ctx, member.ID, on)
	switch {
	case err == nil:
		resp.Salary, resp.Source = latest.NewSalary, dto.SalarySourceHistory
	case errors.Is(err, apperrors.ErrSalaryHistoryNotFound):
		next, err := s.repo.FirstSalaryChangeAfter(ctx, member.ID, on)
		switch {
		case err == nil:
			resp.Salary, resp.Source = next.PreviousSalary, dto.SalarySourceHistory
		case errors.Is(err, apperrors.ErrSalaryHistoryNotFound):
			resp.Salary, resp.Source = member.Salary, dto.SalarySourceCurrent
		default:
			return nil, err
		}
	default:
		return nil, err
	}

	resp.Formatted = helpers.FormatMinorUnits(resp.Salary)
	return resp, nil
}
