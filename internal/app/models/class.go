package models

import "time"

// Class is a class section for one academic year ('classes')
type Class struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	Name           string    `json:"name" db:"name" example:"Grade 8"`
	Section        string    `json:"section" db:"section" example:"A"`
	AcademicYear   string    `json:"academicYear" db:"academic_year" example:"2025-26"`
	RoomID         *int64    `json:"roomId,omitempty" db:"room_id"`
	ClassTeacherID *int64    `json:"classTeacherId,omitempty" db:"class_teacher_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete
}
