package models

import "time"

// Parent defines a guardian record ('parents')
type Parent struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"userId" db:"user_id"`
	Occupation *string   `json:"occupation,omitempty" db:"occupation"`
	Address    *string   `json:"address,omitempty" db:"address"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete

	User *User `json:"user,omitempty"`
}

// ParentStudent is a row of the parent/student join table
type ParentStudent struct {
	ParentID     int64     `json:"parentId" db:"parent_id"`
	StudentID    int64     `json:"studentId" db:"student_id"`
	Relationship string    `json:"relationship" db:"relationship"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// StudentLink is a student seen from one of their parents
type StudentLink struct {
	Relationship string
	Student      *Student
}

// ParentLink is a parent seen from one of their children
type ParentLink struct {
	Relationship string
	Parent       *Parent
}
