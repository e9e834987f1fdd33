package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
)

// DashboardCounts are the raw counters behind the admin dashboard
type DashboardCounts struct {
	Students       int64
	Teachers       int64
	Staff          int64
	Parents        int64
	Rooms          int64
	Classes        int64
	LeaveTypes     int64
	MonthlyPayroll int64
}

// DashboardRepository runs the aggregate dashboard query
type DashboardRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db, sb: newBuilder()}
}

// Counts returns all counters in one round trip
func (r *DashboardRepository) Counts(ctx context.Context) (*DashboardCounts, error) {
	staffByRole := "(SELECT COUNT(*) FROM staff s JOIN users u ON u.id = s.user_id WHERE s.deleted_at IS NULL AND u.role_type = ?)"
	active := func(table string) string {
		return "(SELECT COUNT(*) FROM " + table + " WHERE deleted_at IS NULL)"
	}

	sql, args, err := r.sb.Select().
		Column(active("students")).
		Column(staffByRole, models.RoleTeacher).
		Column(staffByRole, models.RoleStaff).
		Column(active("parents")).
		Column(active("rooms")).
		Column(active("classes")).
		Column(active("leave_types")).
		Column("(SELECT COALESCE(SUM(salary), 0) FROM staff WHERE deleted_at IS NULL)").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard query: %w", err)
	}

	c := &DashboardCounts{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(
		&c.Students, &c.Teachers, &c.Staff, &c.Parents, &c.Rooms, &c.Classes, &c.LeaveTypes, &c.MonthlyPayroll,
	); err != nil {
		return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
	}
	return c, nil
}
