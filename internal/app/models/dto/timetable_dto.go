package dto

import "github.com/yigit/schooldesk/internal/app/models"

// CreateTimetableEntryRequest schedules a period
type CreateTimetableEntryRequest struct {
	ClassID   int64  `json:"classId" binding:"required,min=1" example:"3"`
	DayOfWeek int    `json:"dayOfWeek" binding:"required,min=1,max=7" example:"1"`
	Period    int    `json:"period" binding:"required,min=1,max=12" example:"3"`
	StartTime string `json:"startTime" binding:"required,hhmm" example:"10:00"`
	EndTime   string `json:"endTime" binding:"required,hhmm" example:"10:45"`
	Subject   string `json:"subject" binding:"required,max=100" example:"Mathematics"`
	TeacherID *int64 `json:"teacherId" binding:"omitempty,min=1" example:"5"`
	RoomID    *int64 `json:"roomId" binding:"omitempty,min=1" example:"2"`
}

// UpdateTimetableEntryRequest updates a period. Nil fields are left unchanged;
// clearTeacher and clearRoom unassign the teacher or room.
type UpdateTimetableEntryRequest struct {
	DayOfWeek    *int    `json:"dayOfWeek" binding:"omitempty,min=1,max=7"`
	Period       *int    `json:"period" binding:"omitempty,min=1,max=12"`
	StartTime    *string `json:"startTime" binding:"omitempty,hhmm"`
	EndTime      *string `json:"endTime" binding:"omitempty,hhmm"`
	Subject      *string `json:"subject" binding:"omitempty,min=1,max=100"`
	TeacherID    *int64  `json:"teacherId" binding:"omitempty,min=1"`
	RoomID       *int64  `json:"roomId" binding:"omitempty,min=1"`
	ClearTeacher bool    `json:"clearTeacher" example:"false"`
	ClearRoom    bool    `json:"clearRoom" example:"false"`
}

// TimetableDay groups the entries of one weekday, sorted by period
type TimetableDay struct {
	DayOfWeek int                     `json:"dayOfWeek" example:"1"`
	DayName   string                  `json:"dayName" example:"Monday"`
	Entries   []models.TimetableEntry `json:"entries"`
}

// TimetableView is a weekly timetable for a class, teacher or room
type TimetableView struct {
	OwnerType string         `json:"ownerType" example:"class" enums:"class,teacher,room"`
	OwnerID   int64          `json:"ownerId" example:"3"`
	Days      []TimetableDay `json:"days"`
}
