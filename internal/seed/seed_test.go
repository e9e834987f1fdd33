package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/auth"
)

type fakeUsers struct {
	created []*appModels.User
	err     error
}

func (f *fakeUsers) Create(_ context.Context, u *appModels.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = int64(len(f.created) + 1)
	f.created = append(f.created, u)
	return nil
}

type fakeLeaveTypes struct {
	names []string
	taken map[string]bool
}

func (f *fakeLeaveTypes) Create(_ context.Context, l *appModels.LeaveType) error {
	if f.taken[l.Name] {
		return apperrors.ErrLeaveTypeNameTaken
	}
	f.names = append(f.names, l.Name)
	return nil
}

func TestCreateAdmin(t *testing.T) {
	users := &fakeUsers{}
	user, err := CreateAdmin(context.Background(), users, AdminAccount{Email: "  Head@School.test ", Password: "s3cret-pass"})
	require.NoError(t, err)

	assert.Equal(t, "head@school.test", user.Email)
	assert.Equal(t, appModels.RoleAdmin, user.RoleType)
	assert.True(t, user.IsActive)
	assert.Equal(t, "School", user.FirstName)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "s3cret-pass"))
}

func TestCreateAdmin_RejectsWeakInput(t *testing.T) {
	_, err := CreateAdmin(context.Background(), &fakeUsers{}, AdminAccount{Email: "", Password: "longenough"})
	assert.Error(t, err)
	_, err = CreateAdmin(context.Background(), &fakeUsers{}, AdminAccount{Email: "a@b.test", Password: "short"})
	assert.Error(t, err)
}

func TestCreateDefaultData_IsIdempotent(t *testing.T) {
	users := &fakeUsers{err: apperrors.ErrEmailAlreadyExists}
	leaveTypes := &fakeLeaveTypes{taken: map[string]bool{"Sick Leave": true}}

	err := createDefaultData(context.Background(), users, leaveTypes, AdminAccount{Email: "a@b.test", Password: "password1"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, leaveTypes.names, len(DefaultLeaveTypes)-1)
	assert.NotContains(t, leaveTypes.names, "Sick Leave")
}

func TestCreateDefaultData_CollectsErrors(t *testing.T) {
	boom := errors.New("db down")
	users := &fakeUsers{err: boom}

	err := createDefaultData(context.Background(), users, &fakeLeaveTypes{}, AdminAccount{Email: "a@b.test", Password: "password1"}, zerolog.Nop())
	assert.ErrorIs(t, err, boom)
}
