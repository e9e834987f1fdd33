package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// ClassService manages class sections
type ClassService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*models.Class, error)
	List(ctx context.Context, req *dto.ClassFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*models.Class, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateClassRequest) (*models.Class, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	ListStudents(ctx context.Context, id int64, page dto.PageQuery) (*dto.PaginatedResponse, error)
}

type classServiceImpl struct {
	classes   ClassStore
	rooms     RoomStore
	staff     StaffStore
	students  StudentStore
	audit     AuditService
	dashboard DashboardService
	avatarURL dto.AvatarURLFunc
	logger    zerolog.Logger
}

// NewClassService creates a new ClassService
func NewClassService(
	classes ClassStore,
	rooms RoomStore,
	staff StaffStore,
	students StudentStore,
	audit AuditService,
	dashboard DashboardService,
	avatarURL dto.AvatarURLFunc,
	logger zerolog.Logger,
) ClassService {
	return &classServiceImpl{
		classes:   classes,
		rooms:     rooms,
		staff:     staff,
		students:  students,
		audit:     audit,
		dashboard: dashboard,
		avatarURL: avatarURL,
		logger:    logger,
	}
}

// checkRefs verifies that the referenced room and class teacher exist
func (s *classServiceImpl) checkRefs(ctx context.Context, roomID, teacherID *int64) error {
	if roomID != nil {
		if _, err := s.rooms.GetByID(ctx, *roomID); err != nil {
			return err
		}
	}
	if teacherID != nil {
		member, err := s.staff.GetByID(ctx, *teacherID)
		if err != nil {
			return err
		}
		if member.User != nil && member.User.RoleType != models.RoleTeacher {
			return apperrors.NewBadRequestError("class teacher must be a TEACHER")
		}
	}
	return nil
}

func (s *classServiceImpl) checkUnique(ctx context.Context, c *models.Class) error {
	taken, err := s.classes.Exists(ctx, c.Name, c.Section, c.AcademicYear, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrClassAlreadyExists
	}
	return nil
}

func (s *classServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateClassRequest) (*models.Class, error) {
	if err := s.checkRefs(ctx, req.RoomID, req.ClassTeacherID); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:           strings.TrimSpace(req.Name),
		Section:        strings.ToUpper(strings.TrimSpace(req.Section)),
		AcademicYear:   req.AcademicYear,
		RoomID:         req.RoomID,
		ClassTeacherID: req.ClassTeacherID,
	}
	if err := s.checkUnique(ctx, class); err != nil {
		return nil, err
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, err
	}

	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "class", EntityID: class.ID,
		Metadata: map[string]interface{}{"name": class.Name, "section": class.Section, "academicYear": class.AcademicYear}})
	return class, nil
}

func (s *classServiceImpl) List(ctx context.Context, req *dto.ClassFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.classes.List(ctx, repositories.ClassFilter{AcademicYear: req.AcademicYear, Search: req.Search, Page: page})
	if err != nil {
		return nil, err
	}
	return paginated(list, total, page), nil
}

func (s *classServiceImpl) Get(ctx context.Context, id int64) (*models.Class, error) {
	return s.classes.GetByID(ctx, id)
}

func (s *classServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateClassRequest) (*models.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, req.RoomID, req.ClassTeacherID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Section != nil {
		class.Section = strings.ToUpper(strings.TrimSpace(*req.Section))
	}
	if req.AcademicYear != nil {
		class.AcademicYear = *req.AcademicYear
	}
	if req.RoomID != nil {
		class.RoomID = req.RoomID
	}
	if req.ClassTeacherID != nil {
		class.ClassTeacherID = req.ClassTeacherID
	}
	if req.Name != nil || req.Section != nil || req.AcademicYear != nil {
		if err := s.checkUnique(ctx, class); err != nil {
			return nil, err
		}
	}

	if err := s.classes.Update(ctx, class); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "class", EntityID: class.ID})
	return class, nil
}

func (s *classServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.classes.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.students.CountActiveInClass(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.ErrClassHasStudents
	}

	if err := s.classes.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.dashboard.Invalidate(ctx)
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "class", EntityID: id})
	return nil
}

func (s *classServiceImpl) ListStudents(ctx context.Context, id int64, q dto.PageQuery) (*dto.PaginatedResponse, error) {
	if _, err := s.classes.GetByID(ctx, id); err != nil {
		return nil, err
	}
	page := toPage(q)
	list, total, err := s.students.List(ctx, repositories.StudentFilter{ClassID: &id, Page: page})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StudentResponse, 0, len(list))
	for _, st := range list {
		items = append(items, studentResponse(st, s.avatarURL))
	}
	return paginated(items, total, page), nil
}
