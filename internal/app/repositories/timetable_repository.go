package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/dberrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

var timetableColumns = []string{
	"id", "class_id", "day_of_week", "period", "start_time", "end_time", "subject", "teacher_id", "room_id", "created_at", "updated_at",
}

func scanTimetableEntry(row pgx.Row, e *models.TimetableEntry) error {
	return row.Scan(&e.ID, &e.ClassID, &e.DayOfWeek, &e.Period, &e.StartTime, &e.EndTime, &e.Subject,
		&e.TeacherID, &e.RoomID, &e.CreatedAt, &e.UpdatedAt)
}

// mapTimetableWriteError translates slot index and FK violations into domain errors
func mapTimetableWriteError(err error) error {
	if dberrors.IsUniqueViolation(err) {
		switch dberrors.ConstraintName(err) {
		case "timetable_class_slot_active_key":
			return apperrors.ErrTimetableSlotTaken
		case "timetable_teacher_slot_active_key":
			return apperrors.ErrTeacherBusy
		case "timetable_room_slot_active_key":
			return apperrors.ErrRoomBusy
		}
	}
	if dberrors.IsForeignKeyViolation(err) {
		switch dberrors.ConstraintName(err) {
		case "timetable_entries_class_id_fkey":
			return apperrors.ErrClassNotFound
		case "timetable_entries_teacher_id_fkey":
			return apperrors.ErrStaffNotFound
		case "timetable_entries_room_id_fkey":
			return apperrors.ErrRoomNotFound
		}
	}
	return nil
}

// TimetableRepository handles timetable entries
type TimetableRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTimetableRepository creates a new TimetableRepository
func NewTimetableRepository(db *pgxpool.Pool) *TimetableRepository {
	return &TimetableRepository{db: db, sb: newBuilder()}
}

// Create inserts a timetable entry
func (r *TimetableRepository) Create(ctx context.Context, e *models.TimetableEntry) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("timetable_entries").
		Columns("class_id", "day_of_week", "period", "start_time", "end_time", "subject", "teacher_id", "room_id", "created_at", "updated_at").
		Values(e.ClassID, e.DayOfWeek, e.Period, e.StartTime, e.EndTime, e.Subject, e.TeacherID, e.RoomID, now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create timetable entry query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if mapped := mapTimetableWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("classID", e.ClassID).Msg("Error creating timetable entry")
		return fmt.Errorf("error creating timetable entry: %w", err)
	}
	return nil
}

// FindConflict reports the first clash of e with another active entry in the same day and period:
// the class slot, then the teacher, then the room. It returns nil when the slot is free.
func (r *TimetableRepository) FindConflict(ctx context.Context, e *models.TimetableEntry) error {
	var classTaken, teacherBusy, roomBusy bool
	err := queryRows(ctx, r.db, r.conflictQuery(e), func(rows pgx.Rows) error {
		var classID int64
		var teacherID, roomID *int64
		if err := rows.Scan(&classID, &teacherID, &roomID); err != nil {
			return err
		}
		classTaken = classTaken || classID == e.ClassID
		teacherBusy = teacherBusy || (e.TeacherID != nil && teacherID != nil && *teacherID == *e.TeacherID)
		roomBusy = roomBusy || (e.RoomID != nil && roomID != nil && *roomID == *e.RoomID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to check timetable conflicts: %w", err)
	}

	switch {
	case classTaken:
		return apperrors.ErrTimetableSlotTaken
	case teacherBusy:
		return apperrors.ErrTeacherBusy
	case roomBusy:
		return apperrors.ErrRoomBusy
	}
	return nil
}

// conflictQuery selects active entries in e's slot sharing its class, teacher or room, excluding e itself
func (r *TimetableRepository) conflictQuery(e *models.TimetableEntry) squirrel.SelectBuilder {
	clash := squirrel.Or{squirrel.Eq{"class_id": e.ClassID}}
	if e.TeacherID != nil {
		clash = append(clash, squirrel.Eq{"teacher_id": *e.TeacherID})
	}
	if e.RoomID != nil {
		clash = append(clash, squirrel.Eq{"room_id": *e.RoomID})
	}

	q := r.sb.Select("class_id", "teacher_id", "room_id").From("timetable_entries").
		Where(squirrel.Eq{"day_of_week": e.DayOfWeek, "period": e.Period, "deleted_at": nil}).
		Where(clash)
	if e.ID > 0 {
		q = q.Where(squirrel.NotEq{"id": e.ID})
	}
	return q
}

// GetByID retrieves an active timetable entry
func (r *TimetableRepository) GetByID(ctx context.Context, id int64) (*models.TimetableEntry, error) {
	e := &models.TimetableEntry{}
	err := queryRow(ctx, r.db, r.sb.Select(timetableColumns...).From("timetable_entries").Where(squirrel.Eq{"id": id, "deleted_at": nil}),
		apperrors.ErrTimetableEntryNotFound, func(row pgx.Row) error { return scanTimetableEntry(row, e) })
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update writes a timetable entry
func (r *TimetableRepository) Update(ctx context.Context, e *models.TimetableEntry) error {
	n, err := exec(ctx, r.db, r.sb.Update("timetable_entries").
		Set("day_of_week", e.DayOfWeek).
		Set("period", e.Period).
		Set("start_time", e.StartTime).
		Set("end_time", e.EndTime).
		Set("subject", e.Subject).
		Set("teacher_id", e.TeacherID).
		Set("room_id", e.RoomID).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": e.ID, "deleted_at": nil}), "update timetable entry")
	if err != nil {
		if mapped := mapTimetableWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("entryID", e.ID).Msg("Error updating timetable entry")
		return fmt.Errorf("error updating timetable entry: %w", err)
	}
	if n == 0 {
		return apperrors.ErrTimetableEntryNotFound
	}
	return nil
}

// SoftDelete marks a timetable entry deleted
func (r *TimetableRepository) SoftDelete(ctx context.Context, id, deletedBy int64) error {
	return softDelete(ctx, r.db, r.sb, "timetable_entries", id, deletedBy, apperrors.ErrTimetableEntryNotFound)
}

// ListForOwner returns the active entries of a class, teacher or room ordered by day and period
func (r *TimetableRepository) ListForOwner(ctx context.Context, owner models.TimetableOwner, ownerID int64) ([]models.TimetableEntry, error) {
	column := owner.Column()
	if column == "" {
		return nil, fmt.Errorf("%w: unknown timetable owner %q", apperrors.ErrBadRequest, owner)
	}

	list := []models.TimetableEntry{}
	err := queryRows(ctx, r.db, r.sb.Select(timetableColumns...).From("timetable_entries").
		Where(squirrel.Eq{column: ownerID, "deleted_at": nil}).
		OrderBy("day_of_week", "period", "class_id"), func(rows pgx.Rows) error {
		var e models.TimetableEntry
		if err := scanTimetableEntry(rows, &e); err != nil {
			return err
		}
		list = append(list, e)
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Str("owner", string(owner)).Int64("ownerID", ownerID).Msg("Error listing timetable")
		return nil, fmt.Errorf("failed to list timetable: %w", err)
	}
	return list, nil
}
