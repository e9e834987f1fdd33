package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// StaffService manages teachers and non-teaching staff
type StaffService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateStaffRequest) (*dto.StaffResponse, error)
	List(ctx context.Context, req *dto.StaffFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, actor Actor, id int64) (*dto.StaffResponse, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}

type staffServiceImpl struct {
	staff        StaffStore
	users        UserStore
	sessions     SessionStore
	sessionCache SessionCacheService
	mailer       email.EmailService
	audit        AuditService
	dashboard    DashboardService
	tasks        *TaskRunner
	avatarURL    dto.AvatarURLFunc
	logger       zerolog.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(
	staff StaffStore,
	users UserStore,
	sessions SessionStore,
	sessionCache SessionCacheService,
	mailer email.EmailService,
	audit AuditService,
	dashboard DashboardService,
	tasks *TaskRunner,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) StaffService {
	return &staffServiceImpl{
		staff:        staff,
		users:        users,
		sessions:     sessions,
		sessionCache: sessionCache,
		mailer:       mailer,
		audit:        audit,
		dashboard:    dashboard,
		tasks:        tasks,
		avatarURL:    avatarURL,
		logger:       logger,
	}
}

func (s *staffServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateStaffRequest) (*dto.StaffResponse, error) {
	role := models.RoleType(req.RoleType)
	if !role.IsEmployee() {
		return nil, apperrors.ErrStaffRoleNotAssignable
	}
	joinDate, err := helpers.ParseDate(req.JoinDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}

	code := strings.TrimSpace(req.EmployeeCode)
	taken, err := s.staff.EmployeeCodeExists(ctx, code, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrEmployeeCodeTaken
	}

	user, password, err := newAccount(ctx, s.users, req.PersonRequest, role)
	if err != nil {
		return nil, err
	}

	member := &models.Staff{
		EmployeeCode: code,
		Designation:  strings.TrimSpace(req.Designation),
		Department:   req.Department,
		JoinDate:     joinDate,
		Salary:       req.Salary,
		User:         user,
	}
	if err := s.staff.CreateWithUser(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("staffID", member.ID).Str("role", string(role)).Msg("Staff member created")
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditCreate,
		EntityType: "staff",
		EntityID:   member.ID,
		Metadata:   map[string]interface{}{"employeeCode": member.EmployeeCode, "role": string(role)},
	})
	sendWelcome(ctx, s.tasks, s.mailer, user, password)
	s.dashboard.Invalidate(ctx)

	resp := staffResponse(member, s.avatarURL)
	return &resp, nil
}

func (s *staffServiceImpl) List(ctx context.Context, req *dto.StaffFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.staff.List(ctx, repositories.StaffFilter{
		Role:       models.RoleType(req.Role),
		Department: req.Department,
		Search:     req.Search,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}

	items := make([]dto.StaffResponse, 0, len(list))
	for _, m := range list {
		items = append(items, staffResponse(m, s.avatarURL))
	}
	return paginated(items, total, page), nil
}

func (s *staffServiceImpl) Get(ctx context.Context, actor Actor, id int64) (*dto.StaffResponse, error) {
	member, err := loadStaffFor(ctx, s.staff, actor, id)
	if err != nil {
		return nil, err
	}
	resp := staffResponse(member, s.avatarURL)
	return &resp, nil
}

func (s *staffServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateStaffRequest) (*dto.StaffResponse, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.EmployeeCode != nil {
		code := strings.TrimSpace(*req.EmployeeCode)
		if code != member.EmployeeCode {
			taken, err := s.staff.EmployeeCodeExists(ctx, code, member.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.ErrEmployeeCodeTaken
			}
			member.EmployeeCode = code
		}
	}
	if req.Designation != nil {
		member.Designation = strings.TrimSpace(*req.Designation)
	}
	if req.Department != nil {
		member.Department = stringPtrOrNil(strings.TrimSpace(*req.Department))
	}
	applyPersonUpdate(member.User, req.PersonUpdate)

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "staff", EntityID: member.ID})
	resp := staffResponse(member, s.avatarURL)
	return &resp, nil
}

func (s *staffServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if member.UserID == actor.UserID {
		return apperrors.NewBadRequestError("you cannot delete your own account")
	}

	leads, err := s.staff.IsClassTeacher(ctx, member.ID)
	if err != nil {
		return err
	}
	if leads {
		return apperrors.ErrStaffIsClassTeacher
	}

	if err := s.staff.SoftDelete(ctx, member, actor.UserID); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, member.UserID, ""); err != nil {
		s.logger.Warn().Err(err).Int64("userID", member.UserID).Msg("Failed to revoke sessions of deleted staff")
	}
	s.sessionCache.EvictUser(ctx, member.UserID)

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "staff", EntityID: member.ID})
	s.dashboard.Invalidate(ctx)
	return nil
}

// staffGetter is satisfied by both StaffStore and SalaryStore
type staffGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
}

// loadStaffFor returns the staff member when the actor is an admin or the member themself
func loadStaffFor(ctx context.Context, store staffGetter, actor Actor, id int64) (*models.Staff, error) {
	member, err := store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.ValidateOwnRecord(actor.Subject(), member.UserID); err != nil {
		return nil, err
	}
	return member, nil
}
