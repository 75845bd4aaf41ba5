package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/db"
)

// EnrollmentTx is the set of row operations available inside one enrollment
// transaction. Every call sees the transaction's own writes.
type EnrollmentTx interface {
	StudentExists(ctx context.Context, studentID int64) (bool, error)
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	LockCourse(ctx context.Context, courseID int64) (*models.Course, error)
	EnrollmentExists(ctx context.Context, studentID, courseID int64) (bool, error)
	GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	DeleteEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	UpdateProgress(ctx context.Context, enrollmentID int64, status models.CompletionStatus, progress int, certificate bool) (*models.Enrollment, error)
	CountEnrollments(ctx context.Context, courseID int64) (int, error)
	IncrementEnrolledCount(ctx context.Context, courseID int64) (*models.Course, error)
	DecrementEnrolledCount(ctx context.Context, courseID int64) (*models.Course, error)
	SetEnrolledCount(ctx context.Context, courseID int64, count int) (*models.Course, error)
}

// EnrollmentUnitOfWork runs enrollment work atomically and serves the
// read-only enrollment queries.
type EnrollmentUnitOfWork interface {
	// RunInTx commits when fn returns nil and rolls back every effect otherwise
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx EnrollmentTx) error) error
	GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error)
}

// EnrollmentStore is the Postgres EnrollmentUnitOfWork
type EnrollmentStore struct {
	db          *db.PostgresDB
	students    *StudentRepository
	courses     *CourseRepository
	enrollments *EnrollmentRepository
}

var _ EnrollmentUnitOfWork = (*EnrollmentStore)(nil)

// NewEnrollmentStore creates an EnrollmentStore over the given repositories
func NewEnrollmentStore(database *db.PostgresDB, students *StudentRepository, courses *CourseRepository, enrollments *EnrollmentRepository) *EnrollmentStore {
	return &EnrollmentStore{
		db:          database,
		students:    students,
		courses:     courses,
		enrollments: enrollments,
	}
}

// RunInTx implements EnrollmentUnitOfWork
func (s *EnrollmentStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx EnrollmentTx) error) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgEnrollmentTx{
			students:    s.students.WithTx(tx),
			courses:     s.courses.WithTx(tx),
			enrollments: s.enrollments.WithTx(tx),
		})
	})
}

// GetEnrollment implements EnrollmentUnitOfWork
func (s *EnrollmentStore) GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return s.enrollments.GetByID(ctx, enrollmentID)
}

// ListEnrollments implements EnrollmentUnitOfWork
func (s *EnrollmentStore) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error) {
	return s.enrollments.List(ctx, filter)
}

// pgEnrollmentTx binds the three repositories to one pgx.Tx
type pgEnrollmentTx struct {
	students    *StudentRepository
	courses     *CourseRepository
	enrollments *EnrollmentRepository
}

func (t *pgEnrollmentTx) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	return t.students.Exists(ctx, studentID)
}

func (t *pgEnrollmentTx) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	return t.courses.GetByID(ctx, courseID)
}

func (t *pgEnrollmentTx) LockCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	return t.courses.GetByIDForUpdate(ctx, courseID)
}

func (t *pgEnrollmentTx) EnrollmentExists(ctx context.Context, studentID, courseID int64) (bool, error) {
	return t.enrollments.ExistsForPair(ctx, studentID, courseID)
}

func (t *pgEnrollmentTx) GetEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return t.enrollments.GetByID(ctx, enrollmentID)
}

func (t *pgEnrollmentTx) InsertEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	return t.enrollments.Create(ctx, enrollment)
}

func (t *pgEnrollmentTx) DeleteEnrollment(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	return t.enrollments.Delete(ctx, enrollmentID)
}

func (t *pgEnrollmentTx) UpdateProgress(ctx context.Context, enrollmentID int64, status models.CompletionStatus, progress int, certificate bool) (*models.Enrollment, error) {
	return t.enrollments.UpdateProgress(ctx, enrollmentID, status, progress, certificate)
}

func (t *pgEnrollmentTx) CountEnrollments(ctx context.Context, courseID int64) (int, error) {
	return t.enrollments.CountByCourse(ctx, courseID)
}

func (t *pgEnrollmentTx) IncrementEnrolledCount(ctx context.Context, courseID int64) (*models.Course, error) {
	return t.courses.IncrementEnrolledCount(ctx, courseID)
}

func (t *pgEnrollmentTx) DecrementEnrolledCount(ctx context.Context, courseID int64) (*models.Course, error) {
	return t.courses.DecrementEnrolledCount(ctx, courseID)
}

func (t *pgEnrollmentTx) SetEnrolledCount(ctx context.Context, courseID int64, count int) (*models.Course, error) {
	return t.courses.SetEnrolledCount(ctx, courseID, count)
}
