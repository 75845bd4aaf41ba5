package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/dberrors"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

var enrollmentColumns = []string{
	"id", "student_id", "course_id", "enrollment_date", "completion_status",
	"progress_percentage", "certificate_issued", "created_at", "updated_at",
}

// EnrollmentRepository handles enrollment rows. It never touches the course
// counter; callers pair it with CourseRepository inside one transaction.
type EnrollmentRepository struct {
	db Querier
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db Querier) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *EnrollmentRepository) WithTx(tx pgx.Tx) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

func scanEnrollment(row pgx.Row, e *models.Enrollment) error {
	return row.Scan(
		&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &e.CompletionStatus,
		&e.ProgressPercentage, &e.CertificateIssued, &e.CreatedAt, &e.UpdatedAt,
	)
}

// Create inserts an enrollment. A second row for the same pair is reported as
// ErrDuplicateEnrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	sql, args, err := psql.Insert("enrollments").
		Columns("student_id", "course_id", "enrollment_date", "completion_status",
			"progress_percentage", "certificate_issued").
		Values(enrollment.StudentID, enrollment.CourseID, enrollment.EnrollmentDate,
			enrollment.CompletionStatus, enrollment.ProgressPercentage, enrollment.CertificateIssued).
		Suffix("RETURNING " + joinColumns(enrollmentColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	if err := scanEnrollment(r.db.QueryRow(ctx, sql, args...), enrollment); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintEnrollmentPair):
			return apperrors.ErrDuplicateEnrollment
		case dberrors.IsForeignKeyViolation(err, dberrors.ConstraintEnrollmentStudent):
			return apperrors.ErrStudentNotFound
		case dberrors.IsForeignKeyViolation(err, dberrors.ConstraintEnrollmentCourse):
			return apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).
			Int64("studentID", enrollment.StudentID).
			Int64("courseID", enrollment.CourseID).
			Msg("Error executing create enrollment query")
		return apperrors.NewStorageError("failed to create enrollment", err)
	}

	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := psql.Select(enrollmentColumns...).
		From("enrollments").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	enrollment := &models.Enrollment{}
	if err := scanEnrollment(r.db.QueryRow(ctx, sql, args...), enrollment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, apperrors.NewStorageError("failed to get enrollment", err)
	}

	return enrollment, nil
}

// ExistsForPair reports whether the student is already enrolled in the course
func (r *EnrollmentRepository) ExistsForPair(ctx context.Context, studentID, courseID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).
			Msg("Error checking enrollment existence")
		return false, apperrors.NewStorageError("failed to check enrollment", err)
	}
	return exists, nil
}

// Delete removes an enrollment and returns the deleted row, so the caller
// knows which course counter to release.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := psql.Delete("enrollments").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(enrollmentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build delete enrollment query: %w", err)
	}

	enrollment := &models.Enrollment{}
	if err := scanEnrollment(r.db.QueryRow(ctx, sql, args...), enrollment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing delete enrollment query")
		return nil, apperrors.NewStorageError("failed to delete enrollment", err)
	}

	return enrollment, nil
}

// UpdateProgress overwrites status, progress and certificate flag
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id int64, status models.CompletionStatus, progress int, certificate bool) (*models.Enrollment, error) {
	sql, args, err := psql.Update("enrollments").
		Set("completion_status", status).
		Set("progress_percentage", progress).
		Set("certificate_issued", certificate).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(enrollmentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	enrollment := &models.Enrollment{}
	if err := scanEnrollment(r.db.QueryRow(ctx, sql, args...), enrollment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error executing update enrollment query")
		return nil, apperrors.NewStorageError("failed to update enrollment", err)
	}

	return enrollment, nil
}

// CountByCourse counts the enrollment rows of a course
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&count)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error counting enrollments")
		return 0, apperrors.NewStorageError("failed to count enrollments", err)
	}
	return count, nil
}

// List returns enrollments joined with their student and course, newest first
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error) {
	q := psql.Select(
		"e.id", "e.student_id", "e.course_id", "e.enrollment_date", "e.completion_status",
		"e.progress_percentage", "e.certificate_issued", "e.created_at", "e.updated_at",
		"s.full_name", "s.email", "c.title", "c.course_code",
	).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Join("courses c ON c.id = e.course_id").
		OrderBy("e.enrollment_date DESC", "e.id DESC")

	if filter.StudentID > 0 {
		q = q.Where(squirrel.Eq{"e.student_id": filter.StudentID})
	}
	if filter.CourseID > 0 {
		q = q.Where(squirrel.Eq{"e.course_id": filter.CourseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list enrollments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list enrollments query")
		return nil, apperrors.NewStorageError("failed to list enrollments", err)
	}
	defer rows.Close()

	details := []*models.EnrollmentDetail{}
	for rows.Next() {
		d := &models.EnrollmentDetail{}
		err := rows.Scan(
			&d.ID, &d.StudentID, &d.CourseID, &d.EnrollmentDate, &d.CompletionStatus,
			&d.ProgressPercentage, &d.CertificateIssued, &d.CreatedAt, &d.UpdatedAt,
			&d.StudentName, &d.StudentEmail, &d.CourseTitle, &d.CourseCode,
		)
		if err != nil {
			return nil, apperrors.NewStorageError("failed to scan enrollment", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to iterate enrollments", err)
	}

	return details, nil
}
