package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/app/repositories"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/metrics"
)

// EnrollmentService admits students into courses and keeps each course's
// enrolled_count equal to its number of enrollment rows.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor models.Principal, studentID, courseID int64) (*models.Enrollment, error)
	Unenroll(ctx context.Context, actor models.Principal, enrollmentID int64) error
	UpdateProgress(ctx context.Context, actor models.Principal, enrollmentID int64, upd models.ProgressUpdate) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, actor models.Principal, enrollmentID int64) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, actor models.Principal, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error)
	ReconcileEnrolledCount(ctx context.Context, actor models.Principal, courseID int64) (*models.Course, error)
}

// SeatPublisher is told about a course's seat count after every committed change
type SeatPublisher interface {
	PublishSeats(course *models.Course)
}

type noopSeatPublisher struct{}

func (noopSeatPublisher) PublishSeats(*models.Course) {}

// EnrollmentOption configures an EnrollmentService
type EnrollmentOption func(*enrollmentServiceImpl)

// WithSeatPublisher sends seat count changes to p
func WithSeatPublisher(p SeatPublisher) EnrollmentOption {
	return func(s *enrollmentServiceImpl) {
		if p != nil {
			s.seats = p
		}
	}
}

// enrollmentServiceImpl implements the EnrollmentService interface
type enrollmentServiceImpl struct {
	store  repositories.EnrollmentUnitOfWork
	seats  SeatPublisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(store repositories.EnrollmentUnitOfWork, logger zerolog.Logger, opts ...EnrollmentOption) EnrollmentService {
	s := &enrollmentServiceImpl{
		store:  store,
		seats:  noopSeatPublisher{},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enroll admits studentID into courseID. Preconditions are checked in order
// (student, course, capacity, duplicate) and the row insert plus the
// conditional seat increment commit together or not at all.
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, actor models.Principal, studentID, courseID int64) (*models.Enrollment, error) {
	if studentID == 0 && actor.Role == models.RoleStudent {
		studentID = actor.StudentID
	}

	if studentID <= 0 || courseID <= 0 {
		return nil, s.reject(studentID, courseID, apperrors.NewValidationError("student_id and course_id are required"))
	}
	if !actor.CanActFor(studentID) {
		return nil, s.reject(studentID, courseID, apperrors.ErrPermissionDenied)
	}

	var (
		enrollment *models.Enrollment
		course     *models.Course
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.EnrollmentTx) error {
		exists, err := tx.StudentExists(ctx, studentID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrStudentNotFound
		}

		current, err := tx.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if !current.HasCapacity() {
			return apperrors.ErrCapacityExceeded
		}

		enrolled, err := tx.EnrollmentExists(ctx, studentID, courseID)
		if err != nil {
			return err
		}
		if enrolled {
			return apperrors.ErrDuplicateEnrollment
		}

		e := models.NewEnrollment(studentID, courseID, s.now())
		if err := tx.InsertEnrollment(ctx, e); err != nil {
			return err
		}

		// The pre-check above may be stale; this conditional update is the
		// authoritative capacity check.
		course, err = tx.IncrementEnrolledCount(ctx, courseID)
		if err != nil {
			return err
		}

		enrollment = e
		return nil
	})
	if err != nil {
		return nil, s.reject(studentID, courseID, err)
	}

	metrics.EnrollmentAdmissions.Inc()
	s.seats.PublishSeats(course)
	s.logger.Info().
		Int64("enrollment_id", enrollment.ID).
		Int64("student_id", studentID).
		Int64("course_id", courseID).
		Msg("Student enrolled")

	return enrollment, nil
}

// reject records a refused admission and returns err unchanged
func (s *enrollmentServiceImpl) reject(studentID, courseID int64, err error) error {
	reason := rejectionReason(err)
	metrics.EnrollmentRejections.WithLabelValues(reason).Inc()

	event := s.logger.Warn()
	if reason == metrics.ReasonStorage {
		event = s.logger.Error()
	}
	event.Err(err).
		Int64("student_id", studentID).
		Int64("course_id", courseID).
		Str("reason", reason).
		Msg("Enrollment rejected")

	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return metrics.ReasonValidation
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return metrics.ReasonCapacity
	case errors.Is(err, apperrors.ErrDuplicateEnrollment):
		return metrics.ReasonDuplicate
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return metrics.ReasonForbidden
	default:
		return metrics.ReasonStorage
	}
}

// Unenroll deletes an enrollment and releases its seat in one transaction
func (s *enrollmentServiceImpl) Unenroll(ctx context.Context, actor models.Principal, enrollmentID int64) error {
	if enrollmentID <= 0 {
		return apperrors.NewValidationError("enrollment id must be positive")
	}

	var (
		removed *models.Enrollment
		course  *models.Course
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.EnrollmentTx) error {
		existing, err := tx.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(existing.StudentID) {
			return apperrors.ErrPermissionDenied
		}

		removed, err = tx.DeleteEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}

		course, err = tx.DecrementEnrolledCount(ctx, removed.CourseID)
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("enrollment_id", enrollmentID).Msg("Unenroll failed")
		return err
	}

	metrics.Unenrollments.Inc()
	s.seats.PublishSeats(course)
	s.logger.Info().
		Int64("enrollment_id", enrollmentID).
		Int64("student_id", removed.StudentID).
		Int64("course_id", removed.CourseID).
		Msg("Student unenrolled")

	return nil
}

// validateProgress checks the shape of a progress update
func validateProgress(upd models.ProgressUpdate) error {
	if !upd.CompletionStatus.Valid() {
		return apperrors.NewValidationError("completion_status must be one of: Not Started, In Progress, Completed")
	}
	if upd.ProgressPercentage < 0 || upd.ProgressPercentage > 100 {
		return apperrors.NewValidationError("progress_percentage must be between 0 and 100")
	}
	if upd.CertificateIssued != nil && *upd.CertificateIssued && upd.CompletionStatus != models.StatusCompleted {
		return apperrors.NewValidationError("certificate can only be issued for a completed enrollment")
	}
	return nil
}

// UpdateProgress overwrites status and progress. A certificate survives only
// on a Completed enrollment; an omitted flag keeps the stored value.
func (s *enrollmentServiceImpl) UpdateProgress(ctx context.Context, actor models.Principal, enrollmentID int64, upd models.ProgressUpdate) (*models.Enrollment, error) {
	if enrollmentID <= 0 {
		return nil, apperrors.NewValidationError("enrollment id must be positive")
	}
	if err := validateProgress(upd); err != nil {
		return nil, err
	}

	var updated *models.Enrollment
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.EnrollmentTx) error {
		existing, err := tx.GetEnrollment(ctx, enrollmentID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(existing.StudentID) {
			return apperrors.ErrPermissionDenied
		}

		certificate := existing.CertificateIssued
		if upd.CertificateIssued != nil {
			certificate = *upd.CertificateIssued
		}
		if upd.CompletionStatus != models.StatusCompleted {
			certificate = false
		}

		updated, err = tx.UpdateProgress(ctx, enrollmentID, upd.CompletionStatus, upd.ProgressPercentage, certificate)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("enrollment_id", enrollmentID).
		Str("status", string(updated.CompletionStatus)).
		Int("progress", updated.ProgressPercentage).
		Msg("Enrollment progress updated")

	return updated, nil
}

// GetEnrollment returns one enrollment visible to actor
func (s *enrollmentServiceImpl) GetEnrollment(ctx context.Context, actor models.Principal, enrollmentID int64) (*models.Enrollment, error) {
	if enrollmentID <= 0 {
		return nil, apperrors.NewValidationError("enrollment id must be positive")
	}

	enrollment, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(enrollment.StudentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	return enrollment, nil
}

// ListEnrollments returns enrollments newest first. Students only see their own.
func (s *enrollmentServiceImpl) ListEnrollments(ctx context.Context, actor models.Principal, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error) {
	if filter.StudentID < 0 || filter.CourseID < 0 {
		return nil, apperrors.NewValidationError("filters must be positive ids")
	}

	if !actor.IsAdmin() {
		if actor.StudentID <= 0 || (filter.StudentID != 0 && !actor.CanActFor(filter.StudentID)) {
			return nil, apperrors.ErrPermissionDenied
		}
		filter.StudentID = actor.StudentID
	}

	return s.store.ListEnrollments(ctx, filter)
}

// ReconcileEnrolledCount recounts a course's enrollment rows under a row lock
// and writes the result back to enrolled_count.
func (s *enrollmentServiceImpl) ReconcileEnrolledCount(ctx context.Context, actor models.Principal, courseID int64) (*models.Course, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	if courseID <= 0 {
		return nil, apperrors.NewValidationError("course id must be positive")
	}

	var (
		course  *models.Course
		drifted bool
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.EnrollmentTx) error {
		locked, err := tx.LockCourse(ctx, courseID)
		if err != nil {
			return err
		}

		count, err := tx.CountEnrollments(ctx, courseID)
		if err != nil {
			return err
		}

		if count == locked.EnrolledCount {
			course = locked
			return nil
		}

		drifted = true
		s.logger.Warn().
			Int64("course_id", courseID).
			Int("cached", locked.EnrolledCount).
			Int("actual", count).
			Msg("Enrolled count drift detected")

		course, err = tx.SetEnrolledCount(ctx, courseID, count)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReconciliation(drifted)
	if drifted {
		s.seats.PublishSeats(course)
	}
	return course, nil
}
