package dto

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
)

func TestHandleValidationError(t *testing.T) {
	type req struct {
		RoomNumber string `validate:"required"`
		Capacity   int    `validate:"min=0,max=1000"`
	}
	err := validator.New().Struct(req{Capacity: 5000})
	require.Error(t, err)

	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	fields, ok := detail.Details.([]FieldError)
	require.True(t, ok)
	require.Len(t, fields, 2)
	assert.Equal(t, "roomNumber", fields[0].Field)
	assert.Equal(t, "required", fields[0].Rule)
	assert.Equal(t, "roomNumber is required", fields[0].Message)
	assert.Equal(t, "capacity must be at most 1000", fields[1].Message)
}

func TestHandleValidationError_NonValidatorError(t *testing.T) {
	detail := HandleValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "Invalid request format", detail.Message)
	assert.Equal(t, "unexpected EOF", detail.Details)
}

func TestNewUserResponse_RewritesAvatar(t *testing.T) {
	key := "avatars/3/a.webp"
	u := &models.User{ID: 3, Email: "a@b.np", RoleType: models.RoleParent, AvatarKey: &key}
	urlFor := func(k string) string { return "https://cdn.test/" + k }

	resp := NewUserResponse(u, urlFor)
	assert.Equal(t, "https://cdn.test/avatars/3/a.webp", resp.AvatarURL)
	assert.Equal(t, "PARENT", resp.RoleType)

	u.AvatarKey = nil
	assert.Empty(t, NewUserResponse(u, urlFor).AvatarURL)
	assert.Equal(t, UserResponse{}, NewUserResponse(nil, urlFor))
}

func TestPersonUpdate_IsEmpty(t *testing.T) {
	assert.True(t, PersonUpdate{}.IsEmpty())
	name := "Ram"
	assert.False(t, PersonUpdate{FirstName: &name}.IsEmpty())
}
