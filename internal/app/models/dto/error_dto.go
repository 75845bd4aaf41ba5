package dto

import "time"

// ErrorCode represents standardized error codes
type ErrorCode string

// Standard error codes for the application
const (
	// Authentication errors
	ErrorCodeInvalidToken ErrorCode = "AUTH_005"
	ErrorCodeExpiredToken ErrorCode = "AUTH_006"
	ErrorCodeUnauthorized ErrorCode = "AUTH_008"
	ErrorCodeForbidden    ErrorCode = "AUTH_009"

	// Resource errors
	ErrorCodeResourceNotFound      ErrorCode = "RES_001"
	ErrorCodeResourceAlreadyExists ErrorCode = "RES_002"
	ErrorCodeConflict              ErrorCode = "RES_004"

	// Enrollment errors
	ErrorCodeCapacityExceeded    ErrorCode = "ENR_001"
	ErrorCodeDuplicateEnrollment ErrorCode = "ENR_002"

	// Validation errors
	ErrorCodeValidationFailed ErrorCode = "VAL_001"

	// Request throttling
	ErrorCodeRateLimited ErrorCode = "RATE_001"

	// Server errors
	ErrorCodeInternalServer ErrorCode = "SRV_001"
	ErrorCodeDatabaseError  ErrorCode = "SRV_002"
)

// ErrorSeverity tells clients whether to retry or fix the request
type ErrorSeverity string

const (
	ErrorSeverityWarning  ErrorSeverity = "WARNING"
	ErrorSeverityError    ErrorSeverity = "ERROR"
	ErrorSeverityCritical ErrorSeverity = "CRITICAL"
)

// ErrorDetail is the machine-readable part of a failed response. Message is
// always the sentinel's text, never a driver message.
type ErrorDetail struct {
	Code     ErrorCode     `json:"code" example:"ENR_001"`
	Message  string        `json:"message" example:"course is full"`
	Field    string        `json:"field,omitempty" example:"course_id"`
	Severity ErrorSeverity `json:"severity" example:"ERROR"`
	Details  interface{}   `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails attaches per-field validation failures
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}

// FieldError is one invalid request field
type FieldError struct {
	Field   string `json:"field" example:"course_id"`
	Message string `json:"message" example:"course_id is required"`
}
