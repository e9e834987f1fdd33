package services

import (
	"context"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
)

// defaultRelationship is stored when a link request names none
const defaultRelationship = "GUARDIAN"

// ParentService manages parents and their links to students
type ParentService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateParentRequest) (*dto.ParentResponse, error)
	List(ctx context.Context, req *dto.ParentFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, actor Actor, id int64) (*dto.ParentResponse, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateParentRequest) (*dto.ParentResponse, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	LinkStudent(ctx context.Context, actor Actor, parentID int64, req *dto.LinkStudentRequest) error
	UnlinkStudent(ctx context.Context, actor Actor, parentID, studentID int64) error
	ListStudents(ctx context.Context, actor Actor, parentID int64) ([]dto.LinkedStudentResponse, error)
}

type parentServiceImpl struct {
	parents      ParentStore
	students     StudentStore
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

// NewParentService creates a new ParentService
func NewParentService(
	parents ParentStore,
	students StudentStore,
	users UserStore,
	sessions SessionStore,
	sessionCache SessionCacheService,
	mailer email.EmailService,
	audit AuditService,
	dashboard DashboardService,
	tasks *TaskRunner,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) ParentService {
	return &parentServiceImpl{
		parents:      parents,
		students:     students,
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

func (s *parentServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateParentRequest) (*dto.ParentResponse, error) {
	user, password, err := newAccount(ctx, s.users, req.PersonRequest, models.RoleParent)
	if err != nil {
		return nil, err
	}

	parent := &models.Parent{Occupation: req.Occupation, Address: req.Address, User: user}
	if err := s.parents.CreateWithUser(ctx, parent); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("parentID", parent.ID).Msg("Parent created")
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "parent", EntityID: parent.ID})
	sendWelcome(ctx, s.tasks, s.mailer, user, password)
	s.dashboard.Invalidate(ctx)

	resp := parentResponse(parent, s.avatarURL)
	return &resp, nil
}

func (s *parentServiceImpl) List(ctx context.Context, req *dto.ParentFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.parents.List(ctx, repositories.ParentFilter{Search: req.Search, Page: page})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ParentResponse, 0, len(list))
	for _, p := range list {
		items = append(items, parentResponse(p, s.avatarURL))
	}
	return paginated(items, total, page), nil
}

func (s *parentServiceImpl) Get(ctx context.Context, actor Actor, id int64) (*dto.ParentResponse, error) {
	parent, err := s.loadFor(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := parentResponse(parent, s.avatarURL)
	return &resp, nil
}

func (s *parentServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateParentRequest) (*dto.ParentResponse, error) {
	parent, err := s.parents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Occupation != nil {
		parent.Occupation = stringPtrOrNil(*req.Occupation)
	}
	if req.Address != nil {
		parent.Address = stringPtrOrNil(*req.Address)
	}
	applyPersonUpdate(parent.User, req.PersonUpdate)

	if err := s.parents.Update(ctx, parent); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "parent", EntityID: parent.ID})

	resp := parentResponse(parent, s.avatarURL)
	return &resp, nil
}

func (s *parentServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	parent, err := s.parents.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.parents.SoftDelete(ctx, parent, actor.UserID); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, parent.UserID, ""); err != nil {
		s.logger.Warn().Err(err).Int64("userID", parent.UserID).Msg("Failed to revoke sessions of deleted parent")
	}
	s.sessionCache.EvictUser(ctx, parent.UserID)

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "parent", EntityID: parent.ID})
	s.dashboard.Invalidate(ctx)
	return nil
}

func (s *parentServiceImpl) LinkStudent(ctx context.Context, actor Actor, parentID int64, req *dto.LinkStudentRequest) error {
	if _, err := s.parents.GetByID(ctx, parentID); err != nil {
		return err
	}
	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		return err
	}

	linked, err := s.parents.IsLinked(ctx, parentID, req.StudentID)
	if err != nil {
		return err
	}
	if linked {
		return apperrors.ErrParentStudentLinked
	}

	relationship := req.Relationship
	if relationship == "" {
		relationship = defaultRelationship
	}
	if err := s.parents.LinkStudent(ctx, parentID, req.StudentID, relationship); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditLink,
		EntityType: "parent",
		EntityID:   parentID,
		Metadata:   map[string]interface{}{"studentId": req.StudentID, "relationship": relationship},
	})
	return nil
}

func (s *parentServiceImpl) UnlinkStudent(ctx context.Context, actor Actor, parentID, studentID int64) error {
	if err := s.parents.UnlinkStudent(ctx, parentID, studentID); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditUnlink,
		EntityType: "parent",
		EntityID:   parentID,
		Metadata:   map[string]interface{}{"studentId": studentID},
	})
	return nil
}

func (s *parentServiceImpl) ListStudents(ctx context.Context, actor Actor, parentID int64) ([]dto.LinkedStudentResponse, error) {
	if _, err := s.loadFor(ctx, actor, parentID); err != nil {
		return nil, err
	}
	links, err := s.parents.ListStudents(ctx, parentID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LinkedStudentResponse, 0, len(links))
	for _, l := range links {
		items = append(items, dto.LinkedStudentResponse{
			Relationship: l.Relationship,
			Student:      studentResponse(l.Student, s.avatarURL),
		})
	}
	return items, nil
}

// loadFor returns the parent when the actor is an admin or that parent
func (s *parentServiceImpl) loadFor(ctx context.Context, actor Actor, id int64) (*models.Parent, error) {
	parent, err := s.parents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.ValidateOwnRecord(actor.Subject(), parent.UserID); err != nil {
		return nil, err
	}
	return parent, nil
}
