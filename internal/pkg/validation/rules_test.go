package validation

import (
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsHHMM(t *testing.T) {
	for _, ok := range []string{"00:00", "09:30", "23:59"} {
		assert.True(t, IsHHMM(ok), ok)
	}
	for _, bad := range []string{"24:00", "9:30", "09:60", "0930", ""} {
		assert.False(t, IsHHMM(bad), bad)
	}
}

func TestIsAcademicYear(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025", true},
		{"2025-26", true},
		{"2025-2026", true},
		{"2099-00", true},
		{"2025-27", false},
		{"2025-2027", false},
		{"25-26", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAcademicYear(tt.in), tt.in)
	}
}

type sampleRequest struct {
	Room  string `validate:"required,roomnumber"`
	Start string `validate:"required,hhmm"`
	Year  string `validate:"required,academicyear"`
	Phone string `validate:"omitempty,phone"`
	Date  string `validate:"omitempty,date"`
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(sampleRequest{Room: "B-204", Start: "08:15", Year: "2025-26", Phone: "+9779812345678", Date: "2026-04-01"}))

	err := v.Struct(sampleRequest{Room: "B 204", Start: "8:15", Year: "2025-28", Phone: "call me", Date: "01/04/2026"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 5)
}

func TestRegisterGinValidators(t *testing.T) {
	assert.NoError(t, RegisterGinValidators())
	assert.NoError(t, RegisterGinValidators())
}

func TestJSONFieldName(t *testing.T) {
	type req struct {
		RoomNumber string `json:"roomNumber"`
		Page       int    `form:"page,default=1"`
		Hidden     string `json:"-"`
		Plain      string
	}
	typ := reflect.TypeOf(req{})
	assert.Equal(t, "roomNumber", JSONFieldName(typ.Field(0)))
	assert.Equal(t, "page", JSONFieldName(typ.Field(1)))
	assert.Equal(t, "", JSONFieldName(typ.Field(2)))
	assert.Equal(t, "Plain", JSONFieldName(typ.Field(3)))
}
