package models

import "time"

// LeaveType is a configured kind of leave ('leave_types')
type LeaveType struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	Name           string    `json:"name" db:"name" example:"Sick Leave"`
	Description    *string   `json:"description,omitempty" db:"description"`
	MaxDaysPerYear int       `json:"maxDaysPerYear" db:"max_days_per_year" example:"12"`
	IsPaid         bool      `json:"isPaid" db:"is_paid" example:"true"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete
}
