package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	Email        string     `json:"email" db:"email" example:"principal@school.edu.np"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstName" db:"first_name" example:"Sita"`
	LastName     string     `json:"lastName" db:"last_name" example:"Sharma"`
	Phone        *string    `json:"phone,omitempty" db:"phone" example:"+9779812345678"`
	RoleType     RoleType   `json:"roleType" db:"role_type" example:"TEACHER"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	AvatarKey    *string    `json:"-" db:"avatar_key"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
	SoftDelete
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserSession is a refresh-token bound login session ('user_sessions')
type UserSession struct {
	ID           string     `json:"id" db:"id"`
	UserID       int64      `json:"userId" db:"user_id"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	UserAgent    *string    `json:"userAgent,omitempty" db:"user_agent"`
	IPAddress    *string    `json:"ipAddress,omitempty" db:"ip_address"`
	ExpiresAt    time.Time  `json:"expiresAt" db:"expires_at"`
	RevokedAt    *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsActiveAt reports whether the session is neither revoked nor expired at t
func (s *UserSession) IsActiveAt(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}

// PasswordResetToken stores the hash of a one-time reset token
type PasswordResetToken struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
