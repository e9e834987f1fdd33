package services

import (
	"context"
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/websocket"
)

// The interfaces below are the slices of the repositories each service consumes.
// *repositories.XRepository satisfies them; tests use in-memory fakes.

// UserStore is the user persistence used by services
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, f repositories.UserFilter) ([]*models.User, int64, error)
	ListActiveByRoles(ctx context.Context, roles []models.RoleType) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	UpdateAvatarKey(ctx context.Context, userID int64, key *string) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// SessionStore is the user_sessions persistence
type SessionStore interface {
	Create(ctx context.Context, s *models.UserSession) error
	GetByID(ctx context.Context, id string) (*models.UserSession, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	Rotate(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID int64, keepID string) ([]string, error)
}

// PasswordResetStore is the password_reset_tokens persistence
type PasswordResetStore interface {
	Create(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	Consume(ctx context.Context, tokenID, userID int64, passwordHash string) error
}

// StaffStore is the staff persistence
type StaffStore interface {
	CreateWithUser(ctx context.Context, s *models.Staff) error
	EmployeeCodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	List(ctx context.Context, f repositories.StaffFilter) ([]*models.Staff, int64, error)
	Update(ctx context.Context, s *models.Staff) error
	IsClassTeacher(ctx context.Context, staffID int64) (bool, error)
	SoftDelete(ctx context.Context, s *models.Staff, deletedBy int64) error
}

// SalaryStore is the salary part of the staff persistence
type SalaryStore interface {
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	UpdateSalary(ctx context.Context, c repositories.SalaryChange) (*models.StaffSalaryHistory, error)
	SalaryHistory(ctx context.Context, staffID int64, p repositories.Page) ([]models.StaffSalaryHistory, int64, error)
	LatestSalaryOn(ctx context.Context, staffID int64, date time.Time) (*models.StaffSalaryHistory, error)
	FirstSalaryChangeAfter(ctx context.Context, staffID int64, date time.Time) (*models.StaffSalaryHistory, error)
}

// ParentStore is the parent persistence
type ParentStore interface {
	CreateWithUser(ctx context.Context, p *models.Parent) error
	GetByID(ctx context.Context, id int64) (*models.Parent, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Parent, error)
	List(ctx context.Context, f repositories.ParentFilter) ([]*models.Parent, int64, error)
	Update(ctx context.Context, p *models.Parent) error
	SoftDelete(ctx context.Context, p *models.Parent, deletedBy int64) error
	LinkStudent(ctx context.Context, parentID, studentID int64, relationship string) error
	UnlinkStudent(ctx context.Context, parentID, studentID int64) error
	IsLinked(ctx context.Context, parentID, studentID int64) (bool, error)
	ListStudents(ctx context.Context, parentID int64) ([]models.StudentLink, error)
	ListParentsOfStudent(ctx context.Context, studentID int64) ([]models.ParentLink, error)
}

// StudentStore is the student persistence
type StudentStore interface {
	CreateWithUser(ctx context.Context, s *models.Student) error
	AdmissionNoExists(ctx context.Context, admissionNo string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
	List(ctx context.Context, f repositories.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, s *models.Student) error
	SoftDelete(ctx context.Context, s *models.Student, deletedBy int64) error
	CountActiveInClass(ctx context.Context, classID int64) (int64, error)
}

// RoomStore is the room and asset persistence
type RoomStore interface {
	Create(ctx context.Context, rm *models.Room) error
	RoomNumberExists(ctx context.Context, number string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	List(ctx context.Context, f repositories.RoomFilter) ([]models.Room, int64, error)
	Update(ctx context.Context, rm *models.Room) error
	CountActiveClasses(ctx context.Context, roomID int64) (int64, error)
	SoftDelete(ctx context.Context, id, deletedBy int64) error
	CreateAsset(ctx context.Context, a *models.RoomAsset) error
	AssetTagExists(ctx context.Context, tag string, excludeID int64) (bool, error)
	GetAsset(ctx context.Context, roomID, assetID int64) (*models.RoomAsset, error)
	ListAssets(ctx context.Context, roomID int64) ([]models.RoomAsset, error)
	UpdateAsset(ctx context.Context, a *models.RoomAsset) error
	SoftDeleteAsset(ctx context.Context, roomID, assetID, deletedBy int64) error
}

// ClassStore is the class persistence
type ClassStore interface {
	Create(ctx context.Context, c *models.Class) error
	Exists(ctx context.Context, name, section, academicYear string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	List(ctx context.Context, f repositories.ClassFilter) ([]models.Class, int64, error)
	Update(ctx context.Context, c *models.Class) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// LeaveTypeStore is the leave type persistence
type LeaveTypeStore interface {
	Create(ctx context.Context, l *models.LeaveType) error
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.LeaveType, error)
	List(ctx context.Context, f repositories.LeaveTypeFilter) ([]models.LeaveType, int64, error)
	Update(ctx context.Context, l *models.LeaveType) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// FeeStructureStore is the fee structure persistence
type FeeStructureStore interface {
	Create(ctx context.Context, f *models.FeeStructure) error
	Exists(ctx context.Context, classID int64, academicYear, name string, excludeID int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.FeeStructure, error)
	List(ctx context.Context, f repositories.FeeStructureFilter) ([]models.FeeStructure, int64, error)
	ListForClassYear(ctx context.Context, classID int64, academicYear string) ([]models.FeeStructure, error)
	Update(ctx context.Context, f *models.FeeStructure) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// TimetableStore is the timetable persistence
type TimetableStore interface {
	Create(ctx context.Context, e *models.TimetableEntry) error
	FindConflict(ctx context.Context, e *models.TimetableEntry) error
	GetByID(ctx context.Context, id int64) (*models.TimetableEntry, error)
	Update(ctx context.Context, e *models.TimetableEntry) error
	SoftDelete(ctx context.Context, id, deletedBy int64) error
	ListForOwner(ctx context.Context, owner models.TimetableOwner, ownerID int64) ([]models.TimetableEntry, error)
}

// NoticeStore is the notice persistence
type NoticeStore interface {
	Create(ctx context.Context, n *models.Notice) error
	List(ctx context.Context, audiences []models.Audience, p repositories.Page) ([]models.Notice, int64, error)
	SoftDelete(ctx context.Context, id, deletedBy int64) error
}

// AuditLogStore is the audit_logs persistence
type AuditLogStore interface {
	Create(ctx context.Context, l *models.AuditLog) error
	List(ctx context.Context, f repositories.AuditLogFilter) ([]models.AuditLog, int64, error)
}

// DashboardStore loads the dashboard counters
type DashboardStore interface {
	Counts(ctx context.Context) (*repositories.DashboardCounts, error)
}

// Broadcaster pushes realtime events to connected clients
type Broadcaster interface {
	Broadcast(event websocket.Event, roles ...string) error
}
