package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication / authorization errors
	ErrUnauthorized     = errors.New("authentication required")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")

	// Storage errors: connectivity, transaction or driver failures. Never retried here.
	ErrTransientStorage = errors.New("storage unavailable")
)

// Entity not-found errors. Each one also matches ErrResourceNotFound.
var (
	ErrStudentNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "student not found"}
	ErrCourseNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "course not found"}
	ErrEnrollmentNotFound = &CustomError{Err: ErrResourceNotFound, Message: "enrollment not found"}
)

// Student Errors
var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrStudentHasEnrollments = &CustomError{Err: ErrConflict, Message: "student has enrollments and cannot be deleted"}
)

// Course Errors
var (
	ErrCourseCodeAlreadyExists = errors.New("course code already exists")
	ErrCourseHasEnrollments    = &CustomError{Err: ErrConflict, Message: "course has enrollments and cannot be deleted"}
	ErrCapacityBelowEnrolled   = &CustomError{Err: ErrValidationFailed, Message: "max capacity cannot be lower than enrolled count"}
	ErrEnrollmentsOverCapacity = &CustomError{Err: ErrConflict, Message: "course has more enrollments than its capacity"}
)

// Enrollment Errors
var (
	ErrCapacityExceeded    = errors.New("course is full")
	ErrDuplicateEnrollment = errors.New("student is already enrolled in this course")
)

// NewValidationError wraps ErrValidationFailed with a field-level message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewStorageError wraps a driver error under ErrTransientStorage. The cause is
// kept for logging but never shown to API clients.
func NewStorageError(op string, cause error) error {
	return &CustomError{
		Err:     ErrTransientStorage,
		Message: op,
		Cause:   cause,
	}
}

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Cause   error
}

// Error implements error interface
func (e *CustomError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	if msg == "" {
		return "unknown error"
	}
	return msg
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As
func (e *CustomError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// PublicMessage returns the message that is safe to show to a client. Storage
// causes are stripped.
func PublicMessage(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		if errors.Is(ce.Err, ErrTransientStorage) {
			return ErrTransientStorage.Error()
		}
		if ce.Message != "" {
			return ce.Message
		}
	}
	for _, sentinel := range []error{
		ErrStudentNotFound, ErrCourseNotFound, ErrEnrollmentNotFound,
		ErrCapacityExceeded, ErrDuplicateEnrollment,
		ErrEmailAlreadyExists, ErrCourseCodeAlreadyExists,
		ErrStudentHasEnrollments, ErrCourseHasEnrollments, ErrCapacityBelowEnrolled, ErrEnrollmentsOverCapacity,
		ErrTokenExpired, ErrTokenInvalid, ErrUnauthorized, ErrPermissionDenied,
		ErrResourceNotFound, ErrConflict, ErrValidationFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal server error"
}
