package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

type errorMapping struct {
	status int
	code   dto.ErrorCode
}

// sentinel errors in match order; the first errors.Is hit wins
var errorMappings = []struct {
	err error
	errorMapping
}{
	{apperrors.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials}},
	{apperrors.ErrAccountDisabled, errorMapping{http.StatusUnauthorized, dto.ErrorCodeAccountDisabled}},
	{apperrors.ErrTokenExpired, errorMapping{http.StatusUnauthorized, dto.ErrorCodeExpiredToken}},
	{apperrors.ErrTokenInvalid, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrTokenRevoked, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrSessionNotFound, errorMapping{http.StatusUnauthorized, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrTokenNotFound, errorMapping{http.StatusUnauthorized, dto.ErrorCodeTokenNotFound}},
	{apperrors.ErrInvalidPasswordResetToken, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrPasswordResetTokenUsed, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidToken}},
	{apperrors.ErrTooManyRequests, errorMapping{http.StatusTooManyRequests, dto.ErrorCodeTooManyRequests}},
	{apperrors.ErrPermissionDenied, errorMapping{http.StatusForbidden, dto.ErrorCodeForbidden}},

	{apperrors.ErrValidationFailed, errorMapping{http.StatusBadRequest, dto.ErrorCodeValidationFailed}},
	{apperrors.ErrInvalidEmail, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidEmail}},
	{apperrors.ErrInvalidPassword, errorMapping{http.StatusBadRequest, dto.ErrorCodeInvalidPassword}},
	{apperrors.ErrStaffRoleNotAssignable, errorMapping{http.StatusBadRequest, dto.ErrorCodeBadRequest}},
	{apperrors.ErrUnsupportedImage, errorMapping{http.StatusBadRequest, dto.ErrorCodeBadRequest}},
	{apperrors.ErrFileTooLarge, errorMapping{http.StatusRequestEntityTooLarge, dto.ErrorCodeBadRequest}},
	{apperrors.ErrBadRequest, errorMapping{http.StatusBadRequest, dto.ErrorCodeBadRequest}},

	{apperrors.ErrEmailAlreadyExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrEmployeeCodeTaken, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrAdmissionNoTaken, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrParentStudentLinked, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrRoomNumberTaken, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrAssetTagTaken, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrClassAlreadyExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrLeaveTypeNameTaken, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrFeeStructureExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrResourceAlreadyExists, errorMapping{http.StatusConflict, dto.ErrorCodeResourceAlreadyExists}},
	{apperrors.ErrStaffIsClassTeacher, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrRoomHasActiveClasses, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrClassHasStudents, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrTimetableSlotTaken, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrTeacherBusy, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrRoomBusy, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},
	{apperrors.ErrConflict, errorMapping{http.StatusConflict, dto.ErrorCodeConflict}},

	{apperrors.ErrUserNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrStaffNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrSalaryNotEffective, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrSalaryHistoryNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrStudentNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrParentNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrParentStudentNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrRoomNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrAssetNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrClassNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrLeaveTypeNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrFeeStructureNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrTimetableEntryNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrNoticeNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
	{apperrors.ErrResourceNotFound, errorMapping{http.StatusNotFound, dto.ErrorCodeResourceNotFound}},
}

// StatusFor returns the HTTP status and error code for err, 500 when it is not an application error
func StatusFor(err error) (int, dto.ErrorCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, dto.ErrorCodeInternalServer
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, code := StatusFor(err)

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("path", c.FullPath()).
			Str("requestID", c.GetString(ContextKeyRequestID)).
			Msg("Unhandled error")
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, "Internal server error")))
		return
	}

	// CustomError carries a caller-facing message, sentinels carry their own text
	message := err.Error()
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	detail := dto.NewErrorDetail(code, message)
	if status < http.StatusInternalServerError {
		detail = detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
