package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

// errorMapping pairs a sentinel with the response it produces
type errorMapping struct {
	target error
	status int
	code   dto.ErrorCode
}

// Order matters: specific sentinels come before the generic ones they wrap.
var errorMappings = []errorMapping{
	{apperrors.ErrCapacityExceeded, http.StatusBadRequest, dto.ErrorCodeCapacityExceeded},
	{apperrors.ErrDuplicateEnrollment, http.StatusConflict, dto.ErrorCodeDuplicateEnrollment},
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrCourseCodeAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
	{apperrors.ErrTransientStorage, http.StatusInternalServerError, dto.ErrorCodeDatabaseError},
}

// StatusFor returns the HTTP status and error code for err
func StatusFor(err error) (int, dto.ErrorCode) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, dto.ErrorCodeInternalServer
}

// HandleAPIError writes the error envelope for err. Client errors carry the
// sentinel's message; server errors are logged with their cause and only a
// generic message is returned.
func HandleAPIError(c *gin.Context, err error) {
	status, code := StatusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	detail := dto.NewErrorDetail(code, apperrors.PublicMessage(err))
	if status < http.StatusInternalServerError {
		detail = detail.WithSeverity(dto.ErrorSeverityWarning)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}
