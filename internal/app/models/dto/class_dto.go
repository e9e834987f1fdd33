package dto

// CreateClassRequest creates a class section
type CreateClassRequest struct {
	Name           string `json:"name" binding:"required,max=50" example:"Grade 8"`
	Section        string `json:"section" binding:"max=10" example:"A"`
	AcademicYear   string `json:"academicYear" binding:"required,academicyear" example:"2025-26"`
	RoomID         *int64 `json:"roomId" binding:"omitempty,min=1" example:"2"`
	ClassTeacherID *int64 `json:"classTeacherId" binding:"omitempty,min=1" example:"5"`
}

// UpdateClassRequest updates a class. Nil fields are left unchanged.
type UpdateClassRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=50"`
	Section        *string `json:"section" binding:"omitempty,max=10"`
	AcademicYear   *string `json:"academicYear" binding:"omitempty,academicyear"`
	RoomID         *int64  `json:"roomId" binding:"omitempty,min=1"`
	ClassTeacherID *int64  `json:"classTeacherId" binding:"omitempty,min=1"`
}

// ClassFilterRequest represents class list filters
type ClassFilterRequest struct {
	AcademicYear string `form:"academicYear" binding:"omitempty,academicyear"`
	Search       string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}
