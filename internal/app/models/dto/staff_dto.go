package dto

import "time"

// CreateStaffRequest creates a TEACHER or STAFF account with its employee record
type CreateStaffRequest struct {
	PersonRequest
	RoleType     string  `json:"roleType" binding:"required,oneof=TEACHER STAFF" example:"TEACHER"`
	EmployeeCode string  `json:"employeeCode" binding:"required,max=50" example:"EMP-0042"`
	Designation  string  `json:"designation" binding:"required,max=100" example:"Mathematics Teacher"`
	Department   *string `json:"department" binding:"omitempty,max=100" example:"Science"`
	JoinDate     string  `json:"joinDate" binding:"required,date" example:"2024-04-14"`
	Salary       int64   `json:"salary" binding:"min=0" example:"4500000"`
}

// UpdateStaffRequest updates staff details. Salary changes go through the salary endpoint.
type UpdateStaffRequest struct {
	PersonUpdate
	EmployeeCode *string `json:"employeeCode" binding:"omitempty,min=1,max=50"`
	Designation  *string `json:"designation" binding:"omitempty,min=1,max=100"`
	Department   *string `json:"department" binding:"omitempty,max=100"`
}

// StaffFilterRequest represents staff list filters
type StaffFilterRequest struct {
	Role       string `form:"role" binding:"omitempty,oneof=TEACHER STAFF"`
	Department string `form:"department" binding:"omitempty,max=100"`
	Search     string `form:"search" binding:"omitempty,max=100"`
	PageQuery
}

// StaffResponse represents a staff member
type StaffResponse struct {
	ID           int64        `json:"id" example:"1"`
	EmployeeCode string       `json:"employeeCode" example:"EMP-0042"`
	Designation  string       `json:"designation" example:"Mathematics Teacher"`
	Department   *string      `json:"department,omitempty" example:"Science"`
	JoinDate     string       `json:"joinDate" example:"2024-04-14"`
	Salary       int64        `json:"salary" example:"4500000"`
	User         UserResponse `json:"user"`
}

// UpdateSalaryRequest changes a staff member's salary
type UpdateSalaryRequest struct {
	Salary        *int64 `json:"salary" binding:"required,min=0" example:"5000000"`
	EffectiveFrom string `json:"effectiveFrom" binding:"omitempty,date" example:"2025-07-17"`
	Reason        string `json:"reason" binding:"max=255" example:"Annual increment"`
}

// SalaryHistoryResponse is one salary change
type SalaryHistoryResponse struct {
	ID             int64     `json:"id" example:"7"`
	PreviousSalary int64     `json:"previousSalary" example:"4500000"`
	NewSalary      int64     `json:"newSalary" example:"5000000"`
	EffectiveFrom  string    `json:"effectiveFrom" example:"2025-07-17"`
	Reason         *string   `json:"reason,omitempty" example:"Annual increment"`
	ChangedByID    *int64    `json:"changedById,omitempty" example:"1"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SalaryUpdateResponse is returned by a salary change
type SalaryUpdateResponse struct {
	Staff   StaffResponse         `json:"staff"`
	History SalaryHistoryResponse `json:"history"`
}

// Effective salary sources
const (
	SalarySourceHistory = "HISTORY"
	SalarySourceCurrent = "CURRENT"
)

// EffectiveSalaryResponse is the salary in force on a date
type EffectiveSalaryResponse struct {
	StaffID   int64  `json:"staffId" example:"1"`
	Date      string `json:"date" example:"2025-08-01"`
	Salary    int64  `json:"salary" example:"5000000"`
	Formatted string `json:"formatted" example:"50,000.00"`
	Source    string `json:"source" example:"HISTORY" enums:"HISTORY,CURRENT"`
}
