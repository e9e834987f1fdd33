package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

type fakeStudentLookup struct {
	StudentStore
	students map[int64]*models.Student
}

func (f *fakeStudentLookup) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeParentLinks struct {
	ParentStore
	parentsByUser map[int64]int64
	links         map[[2]int64]bool
}

func (f *fakeParentLinks) GetByUserID(_ context.Context, userID int64) (*models.Parent, error) {
	id, ok := f.parentsByUser[userID]
	if !ok {
		return nil, apperrors.ErrParentNotFound
	}
	return &models.Parent{ID: id, UserID: userID}, nil
}

func (f *fakeParentLinks) IsLinked(_ context.Context, parentID, studentID int64) (bool, error) {
	return f.links[[2]int64{parentID, studentID}], nil
}

type fakeFeeStore struct {
	FeeStructureStore
	structures []models.FeeStructure
	lastYear   string
}

func (f *fakeFeeStore) ListForClassYear(_ context.Context, classID int64, academicYear string) ([]models.FeeStructure, error) {
	f.lastYear = academicYear
	var out []models.FeeStructure
	for _, fs := range f.structures {
		if fs.ClassID == classID && fs.AcademicYear == academicYear {
			out = append(out, fs)
		}
	}
	return out, nil
}

func feeStructure(id int64, freq models.FeeFrequency, year string, items ...models.FeeStructureItem) models.FeeStructure {
	return models.FeeStructure{ID: id, ClassID: 3, AcademicYear: year, Name: string(freq), Frequency: freq, Items: items}
}

func mandatory(amount int64) models.FeeStructureItem {
	return models.FeeStructureItem{Name: "fee", Amount: amount}
}

func optional(amount int64) models.FeeStructureItem {
	return models.FeeStructureItem{Name: "extra", Amount: amount, IsOptional: true}
}

func TestSummarizeFeeStructure(t *testing.T) {
	tests := []struct {
		freq          models.FeeFrequency
		periods       int
		wantMandatory int64
		wantOptional  int64
	}{
		{models.FeeMonthly, 12, 12 * 450000, 12 * 50000},
		{models.FeeTerm, 3, 3 * 450000, 3 * 50000},
		{models.FeeYearly, 1, 450000, 50000},
		{models.FeeOneTime, 1, 450000, 50000},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			sum := SummarizeFeeStructure(feeStructure(1, tt.freq, "2025-26", mandatory(400000), mandatory(50000), optional(50000)))
			assert.Equal(t, tt.periods, sum.PeriodsPerYear)
			assert.Equal(t, int64(450000), sum.MandatoryTotal)
			assert.Equal(t, int64(50000), sum.OptionalTotal)
			assert.Equal(t, tt.wantMandatory, sum.AnnualMandatory)
			assert.Equal(t, tt.wantOptional, sum.AnnualOptional)
		})
	}
}

func newFeeFixture() (*feeServiceImpl, *fakeFeeStore) {
	classID := int64(3)
	fees := &fakeFeeStore{structures: []models.FeeStructure{
		feeStructure(1, models.FeeMonthly, "2025-26", mandatory(400000), optional(50000)),
		feeStructure(2, models.FeeOneTime, "2025-26", mandatory(1000000)),
		feeStructure(3, models.FeeMonthly, "2024-25", mandatory(350000)),
	}}
	svc := &feeServiceImpl{
		fees:    fees,
		classes: &fakeClassStore{classes: map[int64]*models.Class{3: {ID: 3, AcademicYear: "2025-26"}}},
		students: &fakeStudentLookup{students: map[int64]*models.Student{
			4: {ID: 4, UserID: 12, ClassID: &classID},
			5: {ID: 5, UserID: 13},
		}},
		parents: &fakeParentLinks{
			parentsByUser: map[int64]int64{30: 9, 31: 10},
			links:         map[[2]int64]bool{{9, 4}: true},
		},
		audit: &fakeAudit{},
	}
	return svc, fees
}

func TestComputeForStudent_DefaultsToClassYear(t *testing.T) {
	svc, fees := newFeeFixture()

	sum, err := svc.ComputeForStudent(context.Background(), adminActor, 4, "")
	require.NoError(t, err)
	assert.Equal(t, "2025-26", fees.lastYear)
	assert.Equal(t, "2025-26", sum.AcademicYear)
	require.Len(t, sum.Structures, 2)
	assert.Equal(t, int64(12*400000+1000000), sum.AnnualMandatory)
	assert.Equal(t, int64(12*50000), sum.AnnualOptional)
}

func TestComputeForStudent_ExplicitYear(t *testing.T) {
	svc, _ := newFeeFixture()

	sum, err := svc.ComputeForStudent(context.Background(), adminActor, 4, "2024-25")
	require.NoError(t, err)
	require.Len(t, sum.Structures, 1)
	assert.Equal(t, int64(12*350000), sum.AnnualMandatory)
	assert.Zero(t, sum.AnnualOptional)
}

func TestComputeForStudent_WithoutClass(t *testing.T) {
	svc, fees := newFeeFixture()

	sum, err := svc.ComputeForStudent(context.Background(), adminActor, 5, "")
	require.NoError(t, err)
	assert.Nil(t, sum.ClassID)
	assert.Empty(t, sum.Structures)
	assert.NotNil(t, sum.Structures)
	assert.Empty(t, fees.lastYear)
}

func TestComputeForStudent_Access(t *testing.T) {
	svc, _ := newFeeFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		actor Actor
		want  error
	}{
		{"teacher", teacherActor, nil},
		{"the student", Actor{UserID: 12, Role: models.RoleStudent}, nil},
		{"another student", Actor{UserID: 13, Role: models.RoleStudent}, apperrors.ErrPermissionDenied},
		{"linked parent", Actor{UserID: 30, Role: models.RoleParent}, nil},
		{"unlinked parent", Actor{UserID: 31, Role: models.RoleParent}, apperrors.ErrPermissionDenied},
		{"parent without record", Actor{UserID: 32, Role: models.RoleParent}, apperrors.ErrPermissionDenied},
		{"staff", Actor{UserID: 50, Role: models.RoleStaff}, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ComputeForStudent(ctx, tt.actor, 4, "")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
