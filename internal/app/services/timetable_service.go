package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// TimetableService schedules periods and renders weekly views
type TimetableService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateTimetableEntryRequest) (*models.TimetableEntry, error)
	Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateTimetableEntryRequest) (*models.TimetableEntry, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	View(ctx context.Context, owner models.TimetableOwner, ownerID int64) (*dto.TimetableView, error)
}

type timetableServiceImpl struct {
	entries TimetableStore
	classes ClassStore
	staff   StaffStore
	rooms   RoomStore
	audit   AuditService
}

// NewTimetableService creates a new TimetableService
func NewTimetableService(entries TimetableStore, classes ClassStore, staff StaffStore, rooms RoomStore, audit AuditService) TimetableService {
	return &timetableServiceImpl{entries: entries, classes: classes, staff: staff, rooms: rooms, audit: audit}
}

// DayName returns the weekday name for a 1 (Monday) to 7 (Sunday) day number
func DayName(day int) string {
	return time.Weekday(day % 7).String()
}

// validate checks the time range and that every referenced row exists
func (s *timetableServiceImpl) validate(ctx context.Context, e *models.TimetableEntry) error {
	// HH:MM strings order lexically
	if e.StartTime >= e.EndTime {
		return apperrors.NewBadRequestError("startTime must be before endTime")
	}
	if _, err := s.classes.GetByID(ctx, e.ClassID); err != nil {
		return err
	}
	if e.TeacherID != nil {
		if _, err := s.staff.GetByID(ctx, *e.TeacherID); err != nil {
			return err
		}
	}
	if e.RoomID != nil {
		if _, err := s.rooms.GetByID(ctx, *e.RoomID); err != nil {
			return err
		}
	}
	return s.entries.FindConflict(ctx, e)
}

func (s *timetableServiceImpl) Create(ctx context.Context, actor Actor, req *dto.CreateTimetableEntryRequest) (*models.TimetableEntry, error) {
	e := &models.TimetableEntry{
		ClassID:   req.ClassID,
		DayOfWeek: req.DayOfWeek,
		Period:    req.Period,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Subject:   strings.TrimSpace(req.Subject),
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
	}
	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}
	if err := s.entries.Create(ctx, e); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditCreate, EntityType: "timetable_entry", EntityID: e.ID,
		Metadata: map[string]interface{}{"classId": e.ClassID, "day": e.DayOfWeek, "period": e.Period}})
	return e, nil
}

func (s *timetableServiceImpl) Update(ctx context.Context, actor Actor, id int64, req *dto.UpdateTimetableEntryRequest) (*models.TimetableEntry, error) {
	e, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		e.DayOfWeek = *req.DayOfWeek
	}
	if req.Period != nil {
		e.Period = *req.Period
	}
	if req.StartTime != nil {
		e.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		e.EndTime = *req.EndTime
	}
	if req.Subject != nil {
		e.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.ClearTeacher && req.TeacherID != nil {
		return nil, apperrors.NewBadRequestError("teacherId and clearTeacher cannot be combined")
	}
	if req.ClearRoom && req.RoomID != nil {
		return nil, apperrors.NewBadRequestError("roomId and clearRoom cannot be combined")
	}
	switch {
	case req.ClearTeacher:
		e.TeacherID = nil
	case req.TeacherID != nil:
		e.TeacherID = req.TeacherID
	}
	switch {
	case req.ClearRoom:
		e.RoomID = nil
	case req.RoomID != nil:
		e.RoomID = req.RoomID
	}

	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}
	if err := s.entries.Update(ctx, e); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditUpdate, EntityType: "timetable_entry", EntityID: e.ID})
	return e, nil
}

func (s *timetableServiceImpl) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.entries.SoftDelete(ctx, id, actor.UserID); err != nil {
		return err
	}
	s.audit.Record(ctx, AuditEntry{Actor: actor, Action: models.AuditDelete, EntityType: "timetable_entry", EntityID: id})
	return nil
}

func (s *timetableServiceImpl) View(ctx context.Context, owner models.TimetableOwner, ownerID int64) (*dto.TimetableView, error) {
	var err error
	switch owner {
	case models.TimetableOwnerClass:
		_, err = s.classes.GetByID(ctx, ownerID)
	case models.TimetableOwnerTeacher:
		_, err = s.staff.GetByID(ctx, ownerID)
	case models.TimetableOwnerRoom:
		_, err = s.rooms.GetByID(ctx, ownerID)
	default:
		return nil, apperrors.NewBadRequestError("unknown timetable owner " + string(owner))
	}
	if err != nil {
		return nil, err
	}

	entries, err := s.entries.ListForOwner(ctx, owner, ownerID)
	if err != nil {
		return nil, err
	}
	return &dto.TimetableView{OwnerType: string(owner), OwnerID: ownerID, Days: GroupByDay(entries)}, nil
}

// GroupByDay buckets entries per weekday, days ascending and periods ascending within a day.
// Days without entries are omitted.
func GroupByDay(entries []models.TimetableEntry) []dto.TimetableDay {
	sorted := make([]models.TimetableEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DayOfWeek != sorted[j].DayOfWeek {
			return sorted[i].DayOfWeek < sorted[j].DayOfWeek
		}
		return sorted[i].Period < sorted[j].Period
	})

	days := []dto.TimetableDay{}
	for _, e := range sorted {
		if n := len(days); n == 0 || days[n-1].DayOfWeek != e.DayOfWeek {
			days = append(days, dto.TimetableDay{DayOfWeek: e.DayOfWeek, DayName: DayName(e.DayOfWeek)})
		}
		last := &days[len(days)-1]
		last.Entries = append(last.Entries, e)
	}
	return days
}
