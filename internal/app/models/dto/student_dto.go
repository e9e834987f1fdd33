package dto

// CreateStudentRequest creates a STUDENT account with its student record
type CreateStudentRequest struct {
	PersonRequest
	AdmissionNo string  `json:"admissionNo" binding:"required,max=50" example:"ADM-2025-0101"`
	ClassID     *int64  `json:"classId" binding:"omitempty,min=1" example:"3"`
	RollNumber  *int    `json:"rollNumber" binding:"omitempty,min=1,max=999" example:"14"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,date" example:"2012-05-30"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER" example:"FEMALE"`
}

// UpdateStudentRequest updates a student. Nil fields are left unchanged.
type UpdateStudentRequest struct {
	PersonUpdate
	AdmissionNo *string `json:"admissionNo" binding:"omitempty,min=1,max=50"`
	ClassID     *int64  `json:"classId" binding:"omitempty,min=1"`
	RollNumber  *int    `json:"rollNumber" binding:"omitempty,min=1,max=999"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,date"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
}

// StudentFilterRequest represents student list filters
type StudentFilterRequest struct {
	ClassID *int64 `form:"classId" binding:"omitempty,min=1"`
	Search  string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}

// StudentResponse represents a student
type StudentResponse struct {
	ID          int64        `json:"id" example:"1"`
	AdmissionNo string       `json:"admissionNo" example:"ADM-2025-0101"`
	ClassID     *int64       `json:"classId,omitempty" example:"3"`
	RollNumber  *int         `json:"rollNumber,omitempty" example:"14"`
	DateOfBirth *string      `json:"dateOfBirth,omitempty" example:"2012-05-30"`
	Gender      *string      `json:"gender,omitempty" example:"FEMALE"`
	User        UserResponse `json:"user"`
}
