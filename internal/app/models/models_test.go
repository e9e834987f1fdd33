package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeeFrequency_PeriodsPerYear(t *testing.T) {
	assert.Equal(t, 12, FeeMonthly.PeriodsPerYear())
	assert.Equal(t, 3, FeeTerm.PeriodsPerYear())
	assert.Equal(t, 1, FeeYearly.PeriodsPerYear())
	assert.Equal(t, 1, FeeOneTime.PeriodsPerYear())
	assert.Equal(t, 0, FeeFrequency("WEEKLY").PeriodsPerYear())
}

func TestAudience(t *testing.T) {
	assert.ElementsMatch(t, []RoleType{RoleAdmin, RoleParent}, AudienceParents.Roles())
	assert.Len(t, AudienceAll.Roles(), 5)
	assert.Nil(t, Audience("NOBODY").Roles())

	assert.ElementsMatch(t, []Audience{AudienceAll, AudienceStaff}, AudiencesFor(RoleTeacher))
	assert.Len(t, AudiencesFor(RoleAdmin), 4)
}

func TestRoleType(t *testing.T) {
	assert.True(t, RoleTeacher.IsEmployee())
	assert.False(t, RoleParent.IsEmployee())
	assert.False(t, RoleType("INSTRUCTOR").IsValid())
}

func TestUserSession_IsActiveAt(t *testing.T) {
	now := time.Now()
	s := &UserSession{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.IsActiveAt(now))
	assert.False(t, s.IsActiveAt(now.Add(2*time.Hour)))

	s.RevokedAt = &now
	assert.False(t, s.IsActiveAt(now))
}

func TestTimetableOwner_Column(t *testing.T) {
	assert.Equal(t, "class_id", TimetableOwnerClass.Column())
	assert.Equal(t, "teacher_id", TimetableOwnerTeacher.Column())
	assert.Equal(t, "room_id", TimetableOwnerRoom.Column())
	assert.Equal(t, "", TimetableOwner("school").Column())
}
