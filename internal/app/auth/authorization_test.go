package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

type fakeLinks struct {
	parents map[int64]*models.Parent // by user ID
	links   map[[2]int64]bool
	err     error
}

func (f *fakeLinks) GetByUserID(_ context.Context, userID int64) (*models.Parent, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.parents[userID]
	if !ok {
		return nil, apperrors.ErrParentNotFound
	}
	return p, nil
}

func (f *fakeLinks) IsLinked(_ context.Context, parentID, studentID int64) (bool, error) {
	return f.links[[2]int64{parentID, studentID}], nil
}

func TestCanAccessOwnRecord(t *testing.T) {
	assert.True(t, CanAccessOwnRecord(Subject{UserID: 1, Role: models.RoleAdmin}, 9))
	assert.True(t, CanAccessOwnRecord(Subject{UserID: 9, Role: models.RoleTeacher}, 9))
	assert.False(t, CanAccessOwnRecord(Subject{UserID: 8, Role: models.RoleTeacher}, 9))
	assert.False(t, CanAccessOwnRecord(Subject{Role: models.RoleParent}, 0))

	assert.ErrorIs(t, ValidateOwnRecord(Subject{UserID: 8, Role: models.RoleStaff}, 9), apperrors.ErrPermissionDenied)
}

func TestCanAccessStudent(t *testing.T) {
	student := &models.Student{ID: 4, UserID: 40}
	links := &fakeLinks{
		parents: map[int64]*models.Parent{70: {ID: 7, UserID: 70}, 80: {ID: 8, UserID: 80}},
		links:   map[[2]int64]bool{{7, 4}: true},
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		subject Subject
		want    bool
	}{
		{"admin", Subject{UserID: 1, Role: models.RoleAdmin}, true},
		{"teacher", Subject{UserID: 2, Role: models.RoleTeacher}, true},
		{"staff", Subject{UserID: 3, Role: models.RoleStaff}, false},
		{"student self", Subject{UserID: 40, Role: models.RoleStudent}, true},
		{"other student", Subject{UserID: 41, Role: models.RoleStudent}, false},
		{"linked parent", Subject{UserID: 70, Role: models.RoleParent}, true},
		{"unlinked parent", Subject{UserID: 80, Role: models.RoleParent}, false},
		{"parent without record", Subject{UserID: 90, Role: models.RoleParent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanAccessStudent(ctx, links, tt.subject, student)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateStudentAccess_PropagatesLookupErrors(t *testing.T) {
	boom := errors.New("db down")
	err := ValidateStudentAccess(context.Background(), &fakeLinks{err: boom}, Subject{UserID: 70, Role: models.RoleParent}, &models.Student{ID: 4})
	assert.ErrorIs(t, err, boom)

	err = ValidateStudentAccess(context.Background(), &fakeLinks{}, Subject{UserID: 5, Role: models.RoleStaff}, &models.Student{ID: 4})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
