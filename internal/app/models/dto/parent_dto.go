package dto

// CreateParentRequest creates a PARENT account with its parent record
type CreateParentRequest struct {
	PersonRequest
	Occupation *string `json:"occupation" binding:"omitempty,max=100"`
	Address    *string `json:"address" binding:"omitempty,max=255"`
}

// UpdateParentRequest updates a parent. Nil fields are left unchanged.
type UpdateParentRequest struct {
	PersonUpdate
	Occupation *string `json:"occupation" binding:"omitempty,max=100"`
	Address    *string `json:"address" binding:"omitempty,max=255"`
}

// ParentFilterRequest represents parent list filters
type ParentFilterRequest struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}

// ParentResponse represents a parent
type ParentResponse struct {
	ID         int64        `json:"id" example:"1"`
	Occupation *string      `json:"occupation,omitempty" example:"Engineer"`
	Address    *string      `json:"address,omitempty" example:"Lalitpur-3"`
	User       UserResponse `json:"user"`
}

// LinkStudentRequest links a student to a parent
type LinkStudentRequest struct {
	StudentID    int64  `json:"studentId" binding:"required,min=1" example:"4"`
	Relationship string `json:"relationship" binding:"omitempty,oneof=FATHER MOTHER GUARDIAN OTHER" example:"MOTHER"`
}

// LinkedStudentResponse is a student seen from a parent
type LinkedStudentResponse struct {
	Relationship string          `json:"relationship" example:"MOTHER"`
	Student      StudentResponse `json:"student"`
}

// LinkedParentResponse is a parent seen from a student
type LinkedParentResponse struct {
	Relationship string         `json:"relationship" example:"MOTHER"`
	Parent       ParentResponse `json:"parent"`
}
