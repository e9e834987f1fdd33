package services

import (
	"context"
	"strings"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// FeeService manages fee structures and computes what a student owes per year
type FeeService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateFeeStructureRequest) (*models.FeeStructure, error)
	List(ctx context.Context, req *dto.FeeStructureFilterRequest) (*dto.PaginatedResponse, error)
	Get(ctx context.Context, id int64) (*models.FeeStructure, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateFeeStructureRequest) (*models.FeeStructure, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	// ComputeForStudent totals the active structures of the student's class for academicYear,
	// which defaults to the class's own academic year
	ComputeForStudent(ctx context.Context, actor Actor, studentID int64, academicYear string) (*dto.StudentFeeSummary, error)
}

type feeServiceImpl struct {
	fees     FeeStructureStore
	classes  ClassStore
	students StudentStore
	parents  ParentStore
	audit    AuditService
}

// NewFeeService creates a new FeeService
func NewFeeService(fees FeeStructureStore, classes ClassStore, students StudentStore, parents ParentStore, audit AuditService) FeeService {
	return &feeServiceImpl{fees: fees, classes: classes, students: students, parents: parents, audit: audit}
}

func toFeeItems(reqs []dto.FeeItemRequest) []models.FeeStructureItem {
	items := make([]models.FeeStructureItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, models.FeeStructureItem{
			Name:       strings.TrimSpace(r.Name),
			Amount:     r.Amount,
			IsOptional: r.IsOptional,
		})
	}
	return items
}

func (s *feeServiceImpl) checkUnique(ctx context.Context, f *models.FeeStructure) error {
	taken, err := s.fees.Exists(ctx, f.ClassID, f.AcademicYear, f.Name, f.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperrors.ErrFeeStructureExists
	}
	return nil
}

func (s *feeServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateFeeStructureRequest) (*models.FeeStructure, error) {
	if _, err := s.classes.GetByID(ctx, req.ClassID); err != nil {
		return nil, err
	}

	fs := &models.FeeStructure{
		ClassID:      req.ClassID,
		AcademicYear: req.AcademicYear,
		Name:         strings.TrimSpace(req.Name),
		Frequency:    models.FeeFrequency(req.Frequency),
		Items:        toFeeItems(req.Items),
	}
	if err := s.checkUnique(ctx, fs); err != nil {
		return nil, err
	}
	if err := s.fees.Create(ctx, fs); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "fee_structure", EntityID: fs.ID,
		Metadata: map[string]interface{}{"classId": fs.ClassID, "academicYear": fs.AcademicYear, "items": len(fs.Items)}})
	return fs, nil
}

func (s *feeServiceImpl) List(ctx context.Context, req *dto.FeeStructureFilterRequest) (*dto.PaginatedResponse, error) {
	page := toPage(req.PageQuery)
	list, total, err := s.fees.List(ctx, repositories.FeeStructureFilter{ClassID: req.ClassID, AcademicYear: req.AcademicYear, Page: page})
	if err != nil {
		return nil, err
	}
	return paginated(list, total, page), nil
}

func (s *feeServiceImpl) Get(ctx context.Context, id int64) (*models.FeeStructure, error) {
	return s.fees.GetByID(ctx, id)
}

func (s *feeServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateFeeStructureRequest) (*models.FeeStructure, error) {
	fs, err := s.fees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		fs.Name = strings.TrimSpace(*req.Name)
		if err := s.checkUnique(ctx, fs); err != nil {
			return nil, err
		}
	}
	if req.Frequency != nil {
		fs.Frequency = models.FeeFrequency(*req.Frequency)
	}
	// the repository keeps stored items when Items is nil
	stored := fs.Items
	replaceItems := req.Items != nil
	if replaceItems {
		fs.Items = toFeeItems(req.Items)
	} else {
		fs.Items = nil
	}

	if err := s.fees.Update(ctx, fs); err != nil {
		return nil, err
	}
	if !replaceItems {
		fs.Items = stored
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "fee_structure", EntityID: fs.ID,
		Metadata: map[string]interface{}{"itemsReplaced": replaceItems}})
	return fs, nil
}

func (s *feeServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.fees.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "fee_structure", EntityID: id})
	return nil
}

// SummarizeFeeStructure totals one structure's mandatory and optional items per period and per year
func SummarizeFeeStructure(fs models.FeeStructure) dto.FeeStructureSummary {
	sum := dto.FeeStructureSummary{Structure: fs, PeriodsPerYear: fs.Frequency.PeriodsPerYear()}
	for _, item := range fs.Items {
		if item.IsOptional {
			sum.OptionalTotal += item.Amount
		} else {
			sum.MandatoryTotal += item.Amount
		}
	}
	periods := int64(sum.PeriodsPerYear)
	sum.AnnualMandatory = sum.MandatoryTotal * periods
	sum.AnnualOptional = sum.OptionalTotal * periods
	return sum
}

func (s *feeServiceImpl) ComputeForStudent(ctx context.Context, actor Actor, studentID int64, academicYear string) (*dto.StudentFeeSummary, error) {
	student, err := loadStudentFor(ctx, s.students, s.parents, actor, studentID)
	if err != nil {
		return nil, err
	}

	summary := &dto.StudentFeeSummary{
		StudentID:    student.ID,
		ClassID:      student.ClassID,
		AcademicYear: academicYear,
		Structures:   []dto.FeeStructureSummary{},
	}
	if student.ClassID == nil {
		return summary, nil
	}

	if summary.AcademicYear == "" {
		class, err := s.classes.GetByID(ctx, *student.ClassID)
		if err != nil {
			return nil, err
		}
		summary.AcademicYear = class.AcademicYear
	}

	structures, err := s.fees.ListForClassYear(ctx, *student.ClassID, summary.AcademicYear)
	if err != nil {
		return nil, err
	}
	for _, fs := range structures {
		sum := SummarizeFeeStructure(fs)
		summary.Structures = append(summary.Structures, sum)
		summary.AnnualMandatory += sum.AnnualMandatory
		summary.AnnualOptional += sum.AnnualOptional
	}
	return summary, nil
}
