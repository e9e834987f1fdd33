package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/cache"
)

type fakeRoomStore struct {
	RoomStore

	rooms        map[int64]*models.Room
	activeCounts map[int64]int64
	listCalls    int
	deleted      []int64
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: map[int64]*models.Room{}, activeCounts: map[int64]int64{}}
}

func (f *fakeRoomStore) Create(_ context.Context, rm *models.Room) error {
	rm.ID = int64(len(f.rooms) + 1)
	f.rooms[rm.ID] = rm
	return nil
}

func (f *fakeRoomStore) RoomNumberExists(_ context.Context, number string, excludeID int64) (bool, error) {
	for id, rm := range f.rooms {
		if id != excludeID && rm.RoomNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRoomStore) GetByID(_ context.Context, id int64) (*models.Room, error) {
	rm, ok := f.rooms[id]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	cp := *rm
	return &cp, nil
}

func (f *fakeRoomStore) List(context.Context, repositories.RoomFilter) ([]models.Room, int64, error) {
	f.listCalls++
	out := make([]models.Room, 0, len(f.rooms))
	for _, rm := range f.rooms {
		out = append(out, *rm)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRoomStore) Update(_ context.Context, rm *models.Room) error {
	f.rooms[rm.ID] = rm
	return nil
}

func (f *fakeRoomStore) CountActiveClasses(_ context.Context, roomID int64) (int64, error) {
	return f.activeCounts[roomID], nil
}

func (f *fakeRoomStore) SoftDelete(_ context.Context, id, _ int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.rooms, id)
	return nil
}

func newRoomFixture() (RoomService, *fakeRoomStore, *fakeAudit, *fakeDashboard) {
	store := newFakeRoomStore()
	audit, dash := &fakeAudit{}, &fakeDashboard{}
	svc := NewRoomService(store, cache.NewService(cache.NewMemoryStore(64), 0), audit, dash, zerolog.Nop())
	return svc, store, audit, dash
}

func TestRoomService_CreateNormalizesNumber(t *testing.T) {
	svc, _, audit, dash := newRoomFixture()
	ctx := context.Background()

	room, err := svc.Create(ctx, adminActor, &dto.CreateRoomRequest{RoomNumber: " b-204 ", Name: "Physics Lab", RoomType: "LAB", Capacity: 40})
	require.NoError(t, err)
	assert.Equal(t, "B-204", room.RoomNumber)
	assert.Equal(t, []string{models.AuditCreate}, audit.actions())
	assert.Equal(t, 1, dash.invalidated)

	_, err = svc.Create(ctx, adminActor, &dto.CreateRoomRequest{RoomNumber: "B-204", Name: "Other", RoomType: "LAB"})
	assert.ErrorIs(t, err, apperrors.ErrRoomNumberTaken)
}

func TestRoomService_ListIsCachedUntilWrite(t *testing.T) {
	svc, store, _, _ := newRoomFixture()
	ctx := context.Background()
	_, err := svc.Create(ctx, adminActor, &dto.CreateRoomRequest{RoomNumber: "A-101", Name: "Room", RoomType: "CLASSROOM"})
	require.NoError(t, err)

	req := &dto.RoomFilterRequest{PageQuery: dto.PageQuery{Page: 1, Size: 10}}
	for i := 0; i < 3; i++ {
		resp, err := svc.List(ctx, req)
		require.NoError(t, err)
		assert.Len(t, resp.Items, 1)
	}
	assert.Equal(t, 1, store.listCalls)

	_, err = svc.Create(ctx, adminActor, &dto.CreateRoomRequest{RoomNumber: "A-102", Name: "Room", RoomType: "CLASSROOM"})
	require.NoError(t, err)

	resp, err := svc.List(ctx, req)
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, store.listCalls)
}

func TestRoomService_DeleteWithActiveClasses(t *testing.T) {
	svc, store, audit, _ := newRoomFixture()
	ctx := context.Background()
	room, err := svc.Create(ctx, adminActor, &dto.CreateRoomRequest{RoomNumber: "A-101", Name: "Room", RoomType: "CLASSROOM"})
	require.NoError(t, err)

	store.activeCounts[room.ID] = 2
	err = svc.Delete(ctx, adminActor, room.ID)
	assert.ErrorIs(t, err, apperrors.ErrRoomHasActiveClasses)
	assert.Empty(t, store.deleted)

	store.activeCounts[room.ID] = 0
	require.NoError(t, svc.Delete(ctx, adminActor, room.ID))
	assert.Equal(t, []int64{room.ID}, store.deleted)
	assert.Equal(t, []string{models.AuditCreate, models.AuditDelete}, audit.actions())

	assert.ErrorIs(t, svc.Delete(ctx, adminActor, room.ID), apperrors.ErrRoomNotFound)
}
