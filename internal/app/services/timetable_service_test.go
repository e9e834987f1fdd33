package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

type fakeClassStore struct {
	ClassStore
	classes map[int64]*models.Class
}

func (f *fakeClassStore) GetByID(_ context.Context, id int64) (*models.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeStaffLookup struct {
	StaffStore
	ids map[int64]bool
}

func (f *fakeStaffLookup) GetByID(_ context.Context, id int64) (*models.Staff, error) {
	if !f.ids[id] {
		return nil, apperrors.ErrStaffNotFound
	}
	return &models.Staff{ID: id}, nil
}

type fakeTimetableStore struct {
	TimetableStore
	created  []*models.TimetableEntry
	updated  []*models.TimetableEntry
	conflict error
	entries  []models.TimetableEntry
}

func (f *fakeTimetableStore) GetByID(_ context.Context, id int64) (*models.TimetableEntry, error) {
	for _, e := range f.created {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.ErrTimetableEntryNotFound
}

func (f *fakeTimetableStore) Update(_ context.Context, e *models.TimetableEntry) error {
	f.updated = append(f.updated, e)
	return nil
}

func (f *fakeTimetableStore) FindConflict(context.Context, *models.TimetableEntry) error {
	return f.conflict
}

func (f *fakeTimetableStore) Create(_ context.Context, e *models.TimetableEntry) error {
	e.ID = int64(len(f.created) + 1)
	f.created = append(f.created, e)
	return nil
}

func (f *fakeTimetableStore) ListForOwner(context.Context, models.TimetableOwner, int64) ([]models.TimetableEntry, error) {
	return f.entries, nil
}

func newTimetableFixture() (*timetableServiceImpl, *fakeTimetableStore) {
	entries := &fakeTimetableStore{}
	rooms := newFakeRoomStore()
	rooms.rooms[2] = &models.Room{ID: 2, RoomNumber: "B-204"}
	svc := &timetableServiceImpl{
		entries: entries,
		classes: &fakeClassStore{classes: map[int64]*models.Class{3: {ID: 3, Name: "Grade 8", Section: "A"}}},
		staff:   &fakeStaffLookup{ids: map[int64]bool{5: true}},
		rooms:   rooms,
		audit:   &fakeAudit{},
	}
	return svc, entries
}

func validEntry() *dto.CreateTimetableEntryRequest {
	return &dto.CreateTimetableEntryRequest{
		ClassID:   3,
		DayOfWeek: 1,
		Period:    3,
		StartTime: "10:00",
		EndTime:   "10:45",
		Subject:   " Mathematics ",
		TeacherID: int64Ptr(5),
		RoomID:    int64Ptr(2),
	}
}

func TestTimetableService_Create(t *testing.T) {
	svc, store := newTimetableFixture()

	e, err := svc.Create(context.Background(), adminActor, validEntry())
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", e.Subject)
	assert.Len(t, store.created, 1)
}

func TestTimetableService_CreateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*dto.CreateTimetableEntryRequest)
		want   error
	}{
		{"start equals end", func(r *dto.CreateTimetableEntryRequest) { r.EndTime = r.StartTime }, apperrors.ErrBadRequest},
		{"start after end", func(r *dto.CreateTimetableEntryRequest) { r.StartTime, r.EndTime = "11:00", "10:15" }, apperrors.ErrBadRequest},
		{"unknown class", func(r *dto.CreateTimetableEntryRequest) { r.ClassID = 99 }, apperrors.ErrClassNotFound},
		{"unknown teacher", func(r *dto.CreateTimetableEntryRequest) { r.TeacherID = int64Ptr(99) }, apperrors.ErrStaffNotFound},
		{"unknown room", func(r *dto.CreateTimetableEntryRequest) { r.RoomID = int64Ptr(99) }, apperrors.ErrRoomNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTimetableFixture()
			req := validEntry()
			tt.mutate(req)
			_, err := svc.Create(context.Background(), adminActor, req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, store.created)
		})
	}
}

func TestTimetableService_CreateConflict(t *testing.T) {
	svc, store := newTimetableFixture()
	store.conflict = apperrors.ErrTeacherBusy

	_, err := svc.Create(context.Background(), adminActor, validEntry())
	assert.ErrorIs(t, err, apperrors.ErrTeacherBusy)
	assert.Empty(t, store.created)
}

func TestTimetableService_UpdateClearsAssignments(t *testing.T) {
	svc, store := newTimetableFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, validEntry())
	require.NoError(t, err)

	subject := "Science"
	e, err := svc.Update(ctx, adminActor, created.ID, &dto.UpdateTimetableEntryRequest{Subject: &subject})
	require.NoError(t, err)
	require.NotNil(t, e.TeacherID, "omitted fields are unchanged")
	require.NotNil(t, e.RoomID)

	e, err = svc.Update(ctx, adminActor, created.ID, &dto.UpdateTimetableEntryRequest{ClearTeacher: true, ClearRoom: true})
	require.NoError(t, err)
	assert.Nil(t, e.TeacherID)
	assert.Nil(t, e.RoomID)
	require.Len(t, store.updated, 2)
	assert.Nil(t, store.updated[1].TeacherID)

	_, err = svc.Update(ctx, adminActor, created.ID, &dto.UpdateTimetableEntryRequest{RoomID: int64Ptr(2), ClearRoom: true})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Len(t, store.updated, 2)
}

func TestTimetableService_View(t *testing.T) {
	svc, store := newTimetableFixture()
	store.entries = []models.TimetableEntry{
		{ID: 1, DayOfWeek: 3, Period: 2},
		{ID: 2, DayOfWeek: 1, Period: 4},
		{ID: 3, DayOfWeek: 1, Period: 1},
	}
	ctx := context.Background()

	view, err := svc.View(ctx, models.TimetableOwnerClass, 3)
	require.NoError(t, err)
	assert.Equal(t, "class", view.OwnerType)
	require.Len(t, view.Days, 2)
	assert.Equal(t, "Monday", view.Days[0].DayName)
	assert.Equal(t, "Wednesday", view.Days[1].DayName)

	_, err = svc.View(ctx, models.TimetableOwnerRoom, 99)
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	_, err = svc.View(ctx, models.TimetableOwner("school"), 1)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestGroupByDay(t *testing.T) {
	days := GroupByDay([]models.TimetableEntry{
		{ID: 1, DayOfWeek: 5, Period: 2},
		{ID: 2, DayOfWeek: 2, Period: 3},
		{ID: 3, DayOfWeek: 5, Period: 1},
		{ID: 4, DayOfWeek: 2, Period: 1},
	})
	require.Len(t, days, 2)

	assert.Equal(t, 2, days[0].DayOfWeek)
	assert.Equal(t, "Tuesday", days[0].DayName)
	assert.Equal(t, []int64{4, 2}, entryIDs(days[0].Entries))

	assert.Equal(t, 5, days[1].DayOfWeek)
	assert.Equal(t, []int64{3, 1}, entryIDs(days[1].Entries))

	assert.Empty(t, GroupByDay(nil))
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Monday", DayName(1))
	assert.Equal(t, "Saturday", DayName(6))
	assert.Equal(t, "Sunday", DayName(7))
}

func entryIDs(entries []models.TimetableEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}
