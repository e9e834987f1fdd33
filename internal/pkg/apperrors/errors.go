package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTooManyRequests    = errors.New("too many requests")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Staff errors
var (
	ErrStaffNotFound          = errors.New("staff member not found")
	ErrEmployeeCodeTaken      = errors.New("employee code already in use")
	ErrStaffIsClassTeacher    = errors.New("staff member is class teacher of an active class")
	ErrSalaryNotEffective     = errors.New("no salary was effective at the requested date")
	ErrSalaryHistoryNotFound  = errors.New("salary history not found")
	ErrStaffRoleNotAssignable = errors.New("staff role must be TEACHER or STAFF")
)

// Student / parent errors
var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrAdmissionNoTaken      = errors.New("admission number already in use")
	ErrParentNotFound        = errors.New("parent not found")
	ErrParentStudentLinked   = errors.New("parent is already linked to this student")
	ErrParentStudentNotFound = errors.New("parent is not linked to this student")
)

// Room / class errors
var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomNumberTaken      = errors.New("room number already in use")
	ErrRoomHasActiveClasses = errors.New("room has active classes and cannot be deleted")
	ErrAssetNotFound        = errors.New("room asset not found")
	ErrAssetTagTaken        = errors.New("asset tag already in use")
	ErrClassNotFound        = errors.New("class not found")
	ErrClassAlreadyExists   = errors.New("class with this name, section and academic year already exists")
	ErrClassHasStudents     = errors.New("class has active students and cannot be deleted")
)

// Leave type / fee errors
var (
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeNameTaken   = errors.New("leave type name already in use")
	ErrFeeStructureNotFound = errors.New("fee structure not found")
	ErrFeeStructureExists   = errors.New("fee structure with this name already exists for the class and year")
)

// Timetable / notice errors
var (
	ErrTimetableEntryNotFound = errors.New("timetable entry not found")
	ErrTimetableSlotTaken     = errors.New("class already has an entry in this slot")
	ErrTeacherBusy            = errors.New("teacher is already scheduled in this slot")
	ErrRoomBusy               = errors.New("room is already booked in this slot")
	ErrNoticeNotFound         = errors.New("notice not found")
)

// File errors
var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrFileTooLarge     = errors.New("file too large")
)

// Password reset errors
var (
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
	ErrPasswordResetTokenUsed    = errors.New("password reset token has already been used")
)

// NewBadRequestError reports a request that binding accepted but the domain rejects,
// e.g. a timetable slot whose start is not before its end
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}

// Is reports whether err matches target or any of others
func Is(err, target error, others ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range others {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError pairs a sentinel (for status mapping) with a caller-facing message
type CustomError struct {
	Err     error
	Message string
}

func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *CustomError) Unwrap() error { return e.Err }
