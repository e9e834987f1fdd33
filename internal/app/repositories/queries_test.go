package repositories

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooldesk/internal/app/models"
)

func TestStaffRepository_SalaryQueries(t *testing.T) {
	r := &StaffRepository{sb: newBuilder()}
	now := time.Date(2025, 8, 15, 10, 30, 0, 0, time.UTC)
	effective := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("lock", func(t *testing.T) {
		sql, args, err := r.salaryLockQuery(7).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT salary FROM staff WHERE deleted_at IS NULL AND id = $1 FOR UPDATE", sql)
		assert.Equal(t, []interface{}{int64(7)}, args)
	})

	t.Run("update", func(t *testing.T) {
		sql, args, err := r.salaryUpdateQuery(SalaryChange{StaffID: 7, NewSalary: 52000}, now).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "UPDATE staff SET salary = $1, updated_at = $2 WHERE id = $3", sql)
		assert.Equal(t, []interface{}{int64(52000), now, int64(7)}, args)
	})

	t.Run("history insert", func(t *testing.T) {
		reason, changedBy := "annual raise", int64(1)
		h := &models.StaffSalaryHistory{
			StaffID:        7,
			PreviousSalary: 48000,
			NewSalary:      52000,
			EffectiveFrom:  effective,
			Reason:         &reason,
			ChangedByID:    &changedBy,
		}
		sql, args, err := r.salaryHistoryInsert(h, now).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "INSERT INTO staff_salary_history "+
			"(staff_id,previous_salary,new_salary,effective_from,reason,changed_by_id,created_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at", sql)
		assert.Equal(t, []interface{}{int64(7), int64(48000), int64(52000), effective, &reason, &changedBy, now}, args)
	})

	t.Run("latest on date", func(t *testing.T) {
		sql, args, err := r.latestSalaryQuery(7, effective).ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT "+strings.Join(salaryHistoryColumns, ", ")+
			" FROM staff_salary_history WHERE staff_id = $1 AND effective_from <= $2"+
			" ORDER BY effective_from DESC, id DESC", sql)
		assert.Equal(t, []interface{}{int64(7), effective}, args)
	})
}

func TestTimetableRepository_ConflictQuery(t *testing.T) {
	r := &TimetableRepository{sb: newBuilder()}
	teacher, room := int64(5), int64(2)

	tests := []struct {
		name     string
		entry    *models.TimetableEntry
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:  "class only",
			entry: &models.TimetableEntry{ClassID: 3, DayOfWeek: 1, Period: 3},
			wantSQL: "SELECT class_id, teacher_id, room_id FROM timetable_entries " +
				"WHERE day_of_week = $1 AND deleted_at IS NULL AND period = $2 AND (class_id = $3)",
			wantArgs: []interface{}{1, 3, int64(3)},
		},
		{
			name:  "existing entry with teacher and room",
			entry: &models.TimetableEntry{ID: 9, ClassID: 3, DayOfWeek: 1, Period: 3, TeacherID: &teacher, RoomID: &room},
			wantSQL: "SELECT class_id, teacher_id, room_id FROM timetable_entries " +
				"WHERE day_of_week = $1 AND deleted_at IS NULL AND period = $2 " +
				"AND (class_id = $3 OR teacher_id = $4 OR room_id = $5) AND id <> $6",
			wantArgs: []interface{}{1, 3, int64(3), int64(5), int64(2), int64(9)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := r.conflictQuery(tt.entry).ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
