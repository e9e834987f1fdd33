package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	appAuth "github.com/yigit/schooldesk/internal/app/auth"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// StudentService manages students
type StudentService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, actor Actor, id int64) (*dto.StudentResponse, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	ListParents(ctx context.Context, actor Actor, id int64) ([]dto.LinkedParentResponse, error)
}

type studentServiceImpl struct {
	students     StudentStore
	parents      ParentStore
	classes      ClassStore
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

// NewStudentService creates a new StudentService
func NewStudentService(
	students StudentStore,
	parents ParentStore,
	classes ClassStore,
	users UserStore,
	sessions SessionStore,
	sessionCache SessionCacheService,
	mailer email.EmailService,
	audit AuditService,
	dashboard DashboardService,
	tasks *TaskRunner,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) StudentService {
	return &studentServiceImpl{
		students:     students,
		parents:      parents,
		classes:      classes,
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

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := helpers.ParseDate(*s)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	return &t, nil
}

func (s *studentServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	dob, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if req.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *req.ClassID); err != nil {
			return nil, err
		}
	}

	admissionNo := strings.TrimSpace(req.AdmissionNo)
	taken, err := s.students.AdmissionNoExists(ctx, admissionNo, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrAdmissionNoTaken
	}

	user, password, err := newAccount(ctx, s.users, req.PersonRequest, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		AdmissionNo: admissionNo,
		ClassID:     req.ClassID,
		RollNumber:  req.RollNumber,
		DateOfBirth: dob,
		Gender:      req.Gender,
		User:        user,
	}
	if err := s.students.CreateWithUser(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("studentID", student.ID).Str("admissionNo", admissionNo).Msg("Student created")
	s.audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     models.AuditCreate,
		EntityType: "student",
		EntityID:   student.ID,
		Metadata:   map[string]interface{}{"admissionNo": admissionNo},
	})
	sendWelcome(ctx, s.tasks, s.mailer, user, password)
	s.dashboard.Invalidate(ctx)

	resp := studentResponse(student, s.avatarURL)
	return &resp, nil
}

func (s *studentServiceImpl) List(ctx context.Context, req *dto.StudentFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.students.List(ctx, repositories.StudentFilter{ClassID: req.ClassID, Search: req.Search, Page: page})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StudentResponse, 0, len(list))
	for _, st := range list {
		items = append(items, studentResponse(st, s.avatarURL))
	}
	return paginated(items, total, page), nil
}

func (s *studentServiceImpl) Get(ctx context.Context, actor Actor, id int64) (*dto.StudentResponse, error) {
	student, err := loadStudentFor(ctx, s.students, s.parents, actor, id)
	if err != nil {
		return nil, err
	}
	resp := studentResponse(student, s.avatarURL)
	return &resp, nil
}

func (s *studentServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AdmissionNo != nil {
		admissionNo := strings.TrimSpace(*req.AdmissionNo)
		if admissionNo != student.AdmissionNo {
			taken, err := s.students.AdmissionNoExists(ctx, admissionNo, student.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperrors.ErrAdmissionNoTaken
			}
			student.AdmissionNo = admissionNo
		}
	}
	if req.ClassID != nil {
		if _, err := s.classes.GetByID(ctx, *req.ClassID); err != nil {
			return nil, err
		}
		student.ClassID = req.ClassID
	}
	if req.RollNumber != nil {
		student.RollNumber = req.RollNumber
	}
	if req.DateOfBirth != nil {
		dob, err := parseOptionalDate(req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		student.DateOfBirth = dob
	}
	if req.Gender != nil {
		student.Gender = req.Gender
	}
	applyPersonUpdate(student.User, req.PersonUpdate)

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "student", EntityID: student.ID})

	resp := studentResponse(student, s.avatarURL)
	return &resp, nil
}

func (s *studentServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.students.SoftDelete(ctx, student, actor.UserID); err != nil {
		return err
	}
	if _, err := s.sessions.RevokeAllForUser(ctx, student.UserID, ""); err != nil {
		s.logger.Warn().Err(err).Int64("userID", student.UserID).Msg("Failed to revoke sessions of deleted student")
	}
	s.sessionCache.EvictUser(ctx, student.UserID)

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "student", EntityID: student.ID})
	s.dashboard.Invalidate(ctx)
	return nil
}

func (s *studentServiceImpl) ListParents(ctx context.Context, actor Actor, id int64) ([]dto.LinkedParentResponse, error) {
	if _, err := loadStudentFor(ctx, s.students, s.parents, actor, id); err != nil {
		return nil, err
	}
	links, err := s.parents.ListParentsOfStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LinkedParentResponse, 0, len(links))
	for _, l := range links {
		items = append(items, dto.LinkedParentResponse{
			Relationship: l.Relationship,
			Parent:       parentResponse(l.Parent, s.avatarURL),
		})
	}
	return items, nil
}

// loadStudentFor returns the student when the actor may see them:
// admins and teachers always, a parent when linked, a student only themself.
func loadStudentFor(ctx context.Context, students StudentStore, parents ParentStore, actor Actor, id int64) (*models.Student, error) {
	student, err := students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := appAuth.ValidateStudentAccess(ctx, parents, actor.Subject(), student); err != nil {
		return nil, err
	}
	return student, nil
}
