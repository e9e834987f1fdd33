package dto

import (
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
)

// UserResponse represents user information with the avatar key rewritten to a public URL
type UserResponse struct {
	ID          int64      `json:"id" example:"1"`
	Email       string     `json:"email" example:"principal@school.edu.np"`
	FirstName   string     `json:"firstName" example:"Sita"`
	LastName    string     `json:"lastName" example:"Sharma"`
	Phone       *string    `json:"phone,omitempty" example:"+9779812345678"`
	RoleType    string     `json:"roleType" example:"ADMIN" enums:"ADMIN,TEACHER,STAFF,PARENT,STUDENT"`
	IsActive    bool       `json:"isActive" example:"true"`
	AvatarURL   string     `json:"avatarUrl" example:"http://localhost:8080/uploads/avatars/1/6f0c.webp"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AvatarURLFunc maps a stored avatar key to a public URL
type AvatarURLFunc func(key string) string

// NewUserResponse maps a user model to its API shape
func NewUserResponse(u *models.User, avatarURL AvatarURLFunc) UserResponse {
	if u == nil {
		return UserResponse{}
	}
	resp := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		RoleType:    string(u.RoleType),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.AvatarKey != nil && *u.AvatarKey != "" && avatarURL != nil {
		resp.AvatarURL = avatarURL(*u.AvatarKey)
	}
	return resp
}

// UserFilterRequest represents user filtering parameters
type UserFilterRequest struct {
	Role     string `form:"role" binding:"omitempty,oneof=ADMIN TEACHER STAFF PARENT STUDENT"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	IsActive *bool  `form:"isActive"`
	PageQuery
}

// UpdateUserRequest represents an admin update of a user account. Nil fields are left unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
	IsActive  *bool   `json:"isActive"`
}

// AvatarResponse is returned after an avatar upload
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// PersonRequest holds the account fields shared by staff, parent and student creation
type PersonRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	FirstName string  `json:"firstName" binding:"required,max=100"`
	LastName  string  `json:"lastName" binding:"required,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
}

// PersonUpdate holds the account fields shared by staff, parent and student updates
type PersonUpdate struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,phone"`
}

// IsEmpty reports whether no account field is set
func (p PersonUpdate) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}
