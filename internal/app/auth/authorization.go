// Package auth decides which records a caller may read.
package auth

import (
	"context"
	"errors"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// Subject is the authenticated caller of an access check
type Subject struct {
	UserID int64
	Role   models.RoleType
}

// ParentLinks looks up parents and their links to students
type ParentLinks interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Parent, error)
	IsLinked(ctx context.Context, parentID, studentID int64) (bool, error)
}

// CanAccessOwnRecord reports whether the subject is an admin or the account that owns the record
func CanAccessOwnRecord(subject Subject, ownerUserID int64) bool {
	return subject.Role == models.RoleAdmin || (ownerUserID != 0 && subject.UserID == ownerUserID)
}

// ValidateOwnRecord returns ErrPermissionDenied unless CanAccessOwnRecord holds
func ValidateOwnRecord(subject Subject, ownerUserID int64) error {
	if !CanAccessOwnRecord(subject, ownerUserID) {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CanAccessStudent reports whether the subject may read a student record.
// Admins and teachers may read any student, a student only themself and a parent only linked students.
func CanAccessStudent(ctx context.Context, links ParentLinks, subject Subject, student *models.Student) (bool, error) {
	switch subject.Role {
	case models.RoleAdmin, models.RoleTeacher:
		return true, nil
	case models.RoleStudent:
		return student.UserID == subject.UserID, nil
	case models.RoleParent:
		parent, err := links.GetByUserID(ctx, subject.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrParentNotFound) {
				return false, nil
			}
			return false, err
		}
		return links.IsLinked(ctx, parent.ID, student.ID)
	}
	return false, nil
}

// ValidateStudentAccess returns ErrPermissionDenied unless CanAccessStudent holds
func ValidateStudentAccess(ctx context.Context, links ParentLinks, subject Subject, student *models.Student) error {
	ok, err := CanAccessStudent(ctx, links, subject, student)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrPermissionDenied
	}
	return nil
}
