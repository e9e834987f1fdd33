package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	SessionRepository       *SessionRepository
	PasswordResetRepository *PasswordResetTokenRepository
	StaffRepository         *StaffRepository
	ParentRepository        *ParentRepository
	StudentRepository       *StudentRepository
	RoomRepository          *RoomRepository
	ClassRepository         *ClassRepository
	LeaveTypeRepository     *LeaveTypeRepository
	FeeStructureRepository  *FeeStructureRepository
	TimetableRepository     *TimetableRepository
	NoticeRepository        *NoticeRepository
	AuditLogRepository      *AuditLogRepository
	DashboardRepository     *DashboardRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:          NewUserRepository(db),
		SessionRepository:       NewSessionRepository(db),
		PasswordResetRepository: NewPasswordResetTokenRepository(db),
		StaffRepository:         NewStaffRepository(db),
		ParentRepository:        NewParentRepository(db),
		StudentRepository:       NewStudentRepository(db),
		RoomRepository:          NewRoomRepository(db),
		ClassRepository:         NewClassRepository(db),
		LeaveTypeRepository:     NewLeaveTypeRepository(db),
		FeeStructureRepository:  NewFeeStructureRepository(db),
		TimetableRepository:     NewTimetableRepository(db),
		NoticeRepository:        NewNoticeRepository(db),
		AuditLogRepository:      NewAuditLogRepository(db),
		DashboardRepository:     NewDashboardRepository(db),
	}
}
