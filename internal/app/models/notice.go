package models

import "time"

// Audience selects who a notice is addressed to
type Audience string

const (
	AudienceAll      Audience = "ALL"
	AudienceStaff    Audience = "STAFF"
	AudienceParents  Audience = "PARENTS"
	AudienceStudents Audience = "STUDENTS"
)

// Roles returns the user roles that belong to the audience. ADMIN always sees every notice.
func (a Audience) Roles() []RoleType {
	switch a {
	case AudienceStaff:
		return []RoleType{RoleAdmin, RoleTeacher, RoleStaff}
	case AudienceParents:
		return []RoleType{RoleAdmin, RoleParent}
	case AudienceStudents:
		return []RoleType{RoleAdmin, RoleStudent}
	case AudienceAll:
		return []RoleType{RoleAdmin, RoleTeacher, RoleStaff, RoleParent, RoleStudent}
	}
	return nil
}

// AudiencesFor returns the audiences whose notices a role may read
func AudiencesFor(role RoleType) []Audience {
	switch role {
	case RoleAdmin:
		return []Audience{AudienceAll, AudienceStaff, AudienceParents, AudienceStudents}
	case RoleTeacher, RoleStaff:
		return []Audience{AudienceAll, AudienceStaff}
	case RoleParent:
		return []Audience{AudienceAll, AudienceParents}
	case RoleStudent:
		return []Audience{AudienceAll, AudienceStudents}
	}
	return nil
}

// Notice is a published announcement ('notices')
type Notice struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title" example:"Parent-teacher meeting"`
	Body          string    `json:"body" db:"body"`
	Audience      Audience  `json:"audience" db:"audience" example:"PARENTS"`
	PublishedByID *int64    `json:"publishedById,omitempty" db:"published_by_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	SoftDelete
}
