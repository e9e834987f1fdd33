package models

import "time"

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleTeacher RoleType = "TEACHER"
	RoleStaff   RoleType = "STAFF"
	RoleParent  RoleType = "PARENT"
	RoleStudent RoleType = "STUDENT"
)

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStaff, RoleParent, RoleStudent:
		return true
	}
	return false
}

// IsEmployee reports whether r belongs to a staff record
func (r RoleType) IsEmployee() bool {
	return r == RoleTeacher || r == RoleStaff
}

// SoftDelete holds the soft-delete columns shared by most tables
type SoftDelete struct {
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
	DeletedByID *int64     `json:"-" db:"deleted_by_id"`
}

// IsDeleted reports whether the row has been soft deleted
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}
