package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

type fakeSalaryStore struct {
	staff   map[int64]*models.Staff
	history []models.StaffSalaryHistory
	changes []repositories.SalaryChange
}

func (f *fakeSalaryStore) GetByID(_ context.Context, id int64) (*models.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, apperrors.ErrStaffNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSalaryStore) UpdateSalary(_ context.Context, c repositories.SalaryChange) (*models.StaffSalaryHistory, error) {
	f.changes = append(f.changes, c)
	s := f.staff[c.StaffID]
	h := models.StaffSalaryHistory{
		ID:             int64(len(f.history) + 1),
		StaffID:        c.StaffID,
		PreviousSalary: s.Salary,
		NewSalary:      c.NewSalary,
		EffectiveFrom:  c.EffectiveFrom,
		Reason:         c.Reason,
		ChangedByID:    &c.ChangedByID,
	}
	s.Salary = c.NewSalary
	f.history = append(f.history, h)
	return &h, nil
}

func (f *fakeSalaryStore) SalaryHistory(_ context.Context, staffID int64, _ repositories.Page) ([]models.StaffSalaryHistory, int64, error) {
	var out []models.StaffSalaryHistory
	for _, h := range f.history {
		if h.StaffID == staffID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSalaryStore) LatestSalaryOn(_ context.Context, staffID int64, on time.Time) (*models.StaffSalaryHistory, error) {
	var best *models.StaffSalaryHistory
	for i := range f.history {
		h := &f.history[i]
		if h.StaffID != staffID || h.EffectiveFrom.After(on) {
			continue
		}
		if best == nil || !h.EffectiveFrom.Before(best.EffectiveFrom) {
			best = h
		}
	}
	if best == nil {
		return nil, apperrors.ErrSalaryHistoryNotFound
	}
	return best, nil
}

func (f *fakeSalaryStore) FirstSalaryChangeAfter(_ context.Context, staffID int64, on time.Time) (*models.StaffSalaryHistory, error) {
	var best *models.StaffSalaryHistory
	for i := range f.history {
		h := &f.history[i]
		if h.StaffID != staffID || !h.EffectiveFrom.After(on) {
			continue
		}
		if best == nil || h.EffectiveFrom.Before(best.EffectiveFrom) {
			best = h
		}
	}
	if best == nil {
		return nil, apperrors.ErrSalaryHistoryNotFound
	}
	return best, nil
}

type salaryFixture struct {
	svc       *staffSalaryServiceImpl
	store     *fakeSalaryStore
	mailer    *fakeMailer
	audit     *fakeAudit
	dashboard *fakeDashboard
	tasks     *TaskRunner
}

func newSalaryFixture() *salaryFixture {
	store := &fakeSalaryStore{staff: map[int64]*models.Staff{
		7: {
			ID:       7,
			UserID:   40,
			JoinDate: date(2024, 4, 1),
			Salary:   4500000,
			User:     &models.User{ID: 40, Email: "hari@school.test", FirstName: "Hari", LastName: "Thapa", RoleType: models.RoleTeacher},
		},
	}}
	f := &salaryFixture{
		store:     store,
		mailer:    &fakeMailer{},
		audit:     &fakeAudit{},
		dashboard: &fakeDashboard{},
		tasks:     NewTaskRunner(zerolog.Nop()),
	}
	f.svc = &staffSalaryServiceImpl{
		repo:      store,
		mailer:    f.mailer,
		audit:     f.audit,
		dashboard: f.dashboard,
		tasks:     f.tasks,
		avatarURL: noAvatar,
		now:       clock,
		logger:    zerolog.Nop(),
	}
	return f
}

func salary(v int64) *int64 { return &v }

func TestUpdateStaffSalary_WritesOneHistoryRow(t *testing.T) {
	f := newSalaryFixture()

	resp, err := f.svc.UpdateStaffSalary(context.Background(), adminActor, 7, &dto.UpdateSalaryRequest{
		Salary:        salary(5000000),
		EffectiveFrom: "2025-07-17",
		Reason:        "Annual increment",
	})
	require.NoError(t, err)
	f.tasks.Wait()

	require.Len(t, f.store.changes, 1)
	change := f.store.changes[0]
	assert.Equal(t, int64(7), change.StaffID)
	assert.Equal(t, int64(5000000), change.NewSalary)
	assert.Equal(t, date(2025, 7, 17), change.EffectiveFrom)
	require.NotNil(t, change.Reason)
	assert.Equal(t, "Annual increment", *change.Reason)
	assert.Equal(t, adminActor.UserID, change.ChangedByID)

	assert.Equal(t, int64(4500000), resp.History.PreviousSalary)
	assert.Equal(t, int64(5000000), resp.History.NewSalary)
	assert.Equal(t, []string{models.AuditSalaryUpdate}, f.audit.actions())
	assert.Equal(t, 1, f.dashboard.invalidated)

	require.Len(t, f.mailer.salaries, 1)
	assert.Equal(t, "45,000.00", f.mailer.salaries[0].Previous)
	assert.Equal(t, "50,000.00", f.mailer.salaries[0].New)
	assert.Equal(t, "2025-07-17", f.mailer.salaries[0].EffectiveFrom)
}

func TestUpdateStaffSalary_DefaultsToToday(t *testing.T) {
	f := newSalaryFixture()

	_, err := f.svc.UpdateStaffSalary(context.Background(), adminActor, 7, &dto.UpdateSalaryRequest{Salary: salary(0)})
	require.NoError(t, err)
	f.tasks.Wait()

	require.Len(t, f.store.changes, 1)
	assert.Equal(t, date(2025, 8, 15), f.store.changes[0].EffectiveFrom)
	assert.Nil(t, f.store.changes[0].Reason)
}

func TestUpdateStaffSalary_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  dto.UpdateSalaryRequest
		id   int64
		want error
	}{
		{"missing salary", dto.UpdateSalaryRequest{}, 7, apperrors.ErrBadRequest},
		{"negative salary", dto.UpdateSalaryRequest{Salary: salary(-1)}, 7, apperrors.ErrBadRequest},
		{"before join date", dto.UpdateSalaryRequest{Salary: salary(100), EffectiveFrom: "2024-03-31"}, 7, apperrors.ErrBadRequest},
		{"bad date", dto.UpdateSalaryRequest{Salary: salary(100), EffectiveFrom: "17/07/2025"}, 7, apperrors.ErrBadRequest},
		{"unknown staff", dto.UpdateSalaryRequest{Salary: salary(100)}, 99, apperrors.ErrStaffNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSalaryFixture()
			_, err := f.svc.UpdateStaffSalary(context.Background(), adminActor, tt.id, &tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.store.changes)
			assert.Empty(t, f.audit.actions())
		})
	}
}

func TestUpdateStaffSalary_NoMailWithoutAccount(t *testing.T) {
	f := newSalaryFixture()
	f.store.staff[7].User = nil

	_, err := f.svc.UpdateStaffSalary(context.Background(), adminActor, 7, &dto.UpdateSalaryRequest{Salary: salary(4600000)})
	require.NoError(t, err)
	f.tasks.Wait()

	assert.Empty(t, f.mailer.salaries)
}

func TestEffectiveSalary(t *testing.T) {
	f := newSalaryFixture()
	// 45,000 from joining, 50,000 from 2025-01-01, 55,000 from 2025-07-01
	f.store.staff[7].Salary = 5500000
	f.store.history = []models.StaffSalaryHistory{
		{ID: 1, StaffID: 7, PreviousSalary: 4500000, NewSalary: 5000000, EffectiveFrom: date(2025, 1, 1)},
		{ID: 2, StaffID: 7, PreviousSalary: 5000000, NewSalary: 5500000, EffectiveFrom: date(2025, 7, 1)},
	}

	tests := []struct {
		on         string
		wantSalary int64
		wantSource string
	}{
		{"2024-06-01", 4500000, dto.SalarySourceHistory},
		{"2025-01-01", 5000000, dto.SalarySourceHistory},
		{"2025-06-30", 5000000, dto.SalarySourceHistory},
		{"2025-07-01", 5500000, dto.SalarySourceHistory},
		{"", 5500000, dto.SalarySourceHistory},
	}
	for _, tt := range tests {
		t.Run(tt.on, func(t *testing.T) {
			resp, err := f.svc.EffectiveSalary(context.Background(), adminActor, 7, tt.on)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSalary, resp.Salary)
			assert.Equal(t, tt.wantSource, resp.Source)
		})
	}
}

func TestEffectiveSalary_NoHistoryUsesCurrent(t *testing.T) {
	f := newSalaryFixture()

	resp, err := f.svc.EffectiveSalary(context.Background(), adminActor, 7, "2025-02-10")
	require.NoError(t, err)
	assert.Equal(t, int64(4500000), resp.Salary)
	assert.Equal(t, dto.SalarySourceCurrent, resp.Source)
	assert.Equal(t, "45,000.00", resp.Formatted)
	assert.Equal(t, "2025-02-10", resp.Date)
}

func TestEffectiveSalary_BeforeJoinDate(t *testing.T) {
	f := newSalaryFixture()

	_, err := f.svc.EffectiveSalary(context.Background(), adminActor, 7, "2024-03-31")
	assert.ErrorIs(t, err, apperrors.ErrSalaryNotEffective)
}

func TestSalaryReads_OwnRecordOnly(t *testing.T) {
	f := newSalaryFixture()
	ctx := context.Background()

	self := Actor{UserID: 40, Role: models.RoleTeacher}
	_, err := f.svc.EffectiveSalary(ctx, self, 7, "")
	assert.NoError(t, err)
	_, err = f.svc.SalaryHistory(ctx, self, 7, dto.PageQuery{Page: 1, Size: 10})
	assert.NoError(t, err)

	other := Actor{UserID: 41, Role: models.RoleTeacher}
	_, err = f.svc.EffectiveSalary(ctx, other, 7, "")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.svc.SalaryHistory(ctx, other, 7, dto.PageQuery{Page: 1, Size: 10})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
