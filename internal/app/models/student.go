package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	UserID      int64      `json:"userId" db:"user_id" example:"12"`
	AdmissionNo string     `json:"admissionNo" db:"admission_no" example:"ADM-2025-0101"`
	ClassID     *int64     `json:"classId,omitempty" db:"class_id" example:"3"`
	RollNumber  *int       `json:"rollNumber,omitempty" db:"roll_number" example:"14"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	Gender      *string    `json:"gender,omitempty" db:"gender" example:"FEMALE"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	SoftDelete

	User *User `json:"user,omitempty"`
}
