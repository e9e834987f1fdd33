package dto

// CreateLeaveTypeRequest creates a leave type
type CreateLeaveTypeRequest struct {
	Name           string  `json:"name" binding:"required,max=100" example:"Sick Leave"`
	Description    *string `json:"description" binding:"omitempty,max=255"`
	MaxDaysPerYear int     `json:"maxDaysPerYear" binding:"min=0,max=365" example:"12"`
	IsPaid         *bool   `json:"isPaid" example:"true"`
}

// UpdateLeaveTypeRequest updates a leave type. Nil fields are left unchanged.
type UpdateLeaveTypeRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description    *string `json:"description" binding:"omitempty,max=255"`
	MaxDaysPerYear *int    `json:"maxDaysPerYear" binding:"omitempty,min=0,max=365"`
	IsPaid         *bool   `json:"isPaid"`
}

// LeaveTypeFilterRequest represents leave type list filters
type LeaveTypeFilterRequest struct {
	Search string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}
