package models

import "time"

// Staff defines an employee record ('staff') attached to a TEACHER or STAFF user
type Staff struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	UserID       int64     `json:"userId" db:"user_id" example:"4"`
	EmployeeCode string    `json:"employeeCode" db:"employee_code" example:"EMP-0042"`
	Designation  string    `json:"designation" db:"designation" example:"Mathematics Teacher"`
	Department   *string   `json:"department,omitempty" db:"department" example:"Science"`
	JoinDate     time.Time `json:"joinDate" db:"join_date"`
	Salary       int64     `json:"salary" db:"salary" example:"4500000"` // minor units
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete

	User *User `json:"user,omitempty"`
}

// StaffSalaryHistory is one salary change ('staff_salary_history')
type StaffSalaryHistory struct {
	ID             int64     `json:"id" db:"id"`
	StaffID        int64     `json:"staffId" db:"staff_id"`
	PreviousSalary int64     `json:"previousSalary" db:"previous_salary"`
	NewSalary      int64     `json:"newSalary" db:"new_salary"`
	EffectiveFrom  time.Time `json:"effectiveFrom" db:"effective_from"`
	Reason         *string   `json:"reason,omitempty" db:"reason"`
	ChangedByID    *int64    `json:"changedById,omitempty" db:"changed_by_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
