package models

import "time"

// TimetableEntry is one scheduled period ('timetable_entries')
type TimetableEntry struct {
	ID        int64     `json:"id" db:"id"`
	ClassID   int64     `json:"classId" db:"class_id"`
	DayOfWeek int       `json:"dayOfWeek" db:"day_of_week" example:"1"` // 1 = Monday
	Period    int       `json:"period" db:"period" example:"3"`
	StartTime string    `json:"startTime" db:"start_time" example:"10:00"`
	EndTime   string    `json:"endTime" db:"end_time" example:"10:45"`
	Subject   string    `json:"subject" db:"subject" example:"Mathematics"`
	TeacherID *int64    `json:"teacherId,omitempty" db:"teacher_id"`
	RoomID    *int64    `json:"roomId,omitempty" db:"room_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete
}

// TimetableOwner selects whose weekly timetable is viewed
type TimetableOwner string

const (
	TimetableOwnerClass   TimetableOwner = "class"
	TimetableOwnerTeacher TimetableOwner = "teacher"
	TimetableOwnerRoom    TimetableOwner = "room"
)

// Column returns the timetable_entries column that identifies the owner, or "" when unknown
func (o TimetableOwner) Column() string {
	switch o {
	case TimetableOwnerClass:
		return "class_id"
	case TimetableOwnerTeacher:
		return "teacher_id"
	case TimetableOwnerRoom:
		return "room_id"
	}
	return ""
}
