package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

var admin = models.AdminPrincipal

func newTestEnrollmentService(store *memStore) EnrollmentService {
	return NewEnrollmentService(store, zerolog.Nop())
}

func TestEnroll_CreatesEnrollmentWithDefaults(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 0)
	svc := newTestEnrollmentService(store)

	enrollment, err := svc.Enroll(context.Background(), admin, 10, 5)
	require.NoError(t, err)

	assert.NotZero(t, enrollment.ID)
	assert.Equal(t, int64(10), enrollment.StudentID)
	assert.Equal(t, int64(5), enrollment.CourseID)
	assert.Equal(t, models.StatusNotStarted, enrollment.CompletionStatus)
	assert.Equal(t, 0, enrollment.ProgressPercentage)
	assert.False(t, enrollment.CertificateIssued)
	assert.False(t, enrollment.EnrollmentDate.IsZero())
	assert.Equal(t, 1, store.course(5).EnrolledCount)
}

func TestEnroll_PreconditionOrder(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(s *memStore)
		studentID int64
		courseID  int64
		wantErr   error
	}{
		{
			name:      "missing ids",
			setup:     func(s *memStore) {},
			studentID: 0,
			courseID:  5,
			wantErr:   apperrors.ErrValidationFailed,
		},
		{
			name:      "student checked before course",
			setup:     func(s *memStore) {},
			studentID: 10,
			courseID:  5,
			wantErr:   apperrors.ErrStudentNotFound,
		},
		{
			name:      "course not found",
			setup:     func(s *memStore) { s.addStudent(10) },
			studentID: 10,
			courseID:  5,
			wantErr:   apperrors.ErrCourseNotFound,
		},
		{
			name: "capacity checked before duplicate",
			setup: func(s *memStore) {
				s.addStudent(10)
				s.addCourse(5, 1, 1)
				s.addEnrollmentRow(10, 5)
			},
			studentID: 10,
			courseID:  5,
			wantErr:   apperrors.ErrCapacityExceeded,
		},
		{
			name: "duplicate",
			setup: func(s *memStore) {
				s.addStudent(10)
				s.addCourse(5, 2, 1)
				s.addEnrollmentRow(10, 5)
			},
			studentID: 10,
			courseID:  5,
			wantErr:   apperrors.ErrDuplicateEnrollment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			tt.setup(store)
			svc := newTestEnrollmentService(store)

			_, err := svc.Enroll(context.Background(), admin, tt.studentID, tt.courseID)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEnroll_NotFoundErrorsMatchGenericSentinel(t *testing.T) {
	store := newMemStore()
	svc := newTestEnrollmentService(store)

	_, err := svc.Enroll(context.Background(), admin, 10, 5)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestEnroll_DuplicatePairCountsOnce(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 0)
	svc := newTestEnrollmentService(store)

	_, err := svc.Enroll(context.Background(), admin, 10, 5)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), admin, 10, 5)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
	assert.Equal(t, 1, store.course(5).EnrolledCount)
	assert.Equal(t, 1, store.rowsForCourse(5))
}

func TestEnroll_ConcurrentRequestsNeverExceedCapacity(t *testing.T) {
	const capacity, extra = 5, 15

	store := newMemStore()
	store.addCourse(5, capacity, 0)
	for id := int64(1); id <= capacity+extra; id++ {
		store.addStudent(id)
	}
	svc := newTestEnrollmentService(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
		other     []error
	)
	for id := int64(1); id <= capacity+extra; id++ {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), admin, studentID, 5)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperrors.ErrCapacityExceeded):
				full++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, extra, full)
	assert.Equal(t, capacity, store.course(5).EnrolledCount)
	assert.Equal(t, capacity, store.rowsForCourse(5))
}

func TestEnroll_ConcurrentSamePairAdmitsOne(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 0)
	svc := newTestEnrollmentService(store)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), admin, 10, 5)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.course(5).EnrolledCount)
	assert.Equal(t, 1, store.rowsForCourse(5))
}

func TestEnroll_IncrementFailureRollsBackInsert(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 3)
	store.failIncrement = apperrors.NewStorageError("failed to increment enrolled count", errors.New("connection reset"))
	svc := newTestEnrollmentService(store)

	_, err := svc.Enroll(context.Background(), admin, 10, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransientStorage)

	assert.Equal(t, 0, store.rowsForCourse(5))
	assert.Equal(t, 3, store.course(5).EnrolledCount)
}

func TestUnenroll_RestoresCount(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 7)
	svc := newTestEnrollmentService(store)

	enrollment, err := svc.Enroll(context.Background(), admin, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, store.course(5).EnrolledCount)

	require.NoError(t, svc.Unenroll(context.Background(), admin, enrollment.ID))
	assert.Equal(t, 7, store.course(5).EnrolledCount)

	_, err = store.GetEnrollment(context.Background(), enrollment.ID)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestUnenroll_NeverGoesBelowZero(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 0)
	id := store.addEnrollmentRow(10, 5)
	svc := newTestEnrollmentService(store)

	require.NoError(t, svc.Unenroll(context.Background(), admin, id))
	assert.Equal(t, 0, store.course(5).EnrolledCount)
	assert.Equal(t, 0, store.rowsForCourse(5))
}

func TestUnenroll_Errors(t *testing.T) {
	store := newMemStore()
	svc := newTestEnrollmentService(store)

	assert.ErrorIs(t, svc.Unenroll(context.Background(), admin, 0), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.Unenroll(context.Background(), admin, 999), apperrors.ErrEnrollmentNotFound)
}

func TestSingleSeatScenario(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addStudent(11)
	store.addCourse(5, 1, 0)
	svc := newTestEnrollmentService(store)
	ctx := context.Background()

	first, err := svc.Enroll(ctx, admin, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.course(5).EnrolledCount)

	_, err = svc.Enroll(ctx, admin, 11, 5)
	assert.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	require.NoError(t, svc.Unenroll(ctx, admin, first.ID))
	assert.Equal(t, 0, store.course(5).EnrolledCount)

	_, err = svc.Enroll(ctx, admin, 11, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.course(5).EnrolledCount)
}

func TestEnroll_StudentPrincipal(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addStudent(11)
	store.addCourse(5, 30, 0)
	svc := newTestEnrollmentService(store)
	student := models.Principal{Role: models.RoleStudent, StudentID: 10}

	_, err := svc.Enroll(context.Background(), student, 11, 5)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, 0, store.course(5).EnrolledCount)

	enrollment, err := svc.Enroll(context.Background(), student, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(10), enrollment.StudentID)
}

func TestUnenroll_StudentCannotRemoveOthers(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 1)
	id := store.addEnrollmentRow(10, 5)
	svc := newTestEnrollmentService(store)

	err := svc.Unenroll(context.Background(), models.Principal{Role: models.RoleStudent, StudentID: 11}, id)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, 1, store.course(5).EnrolledCount)
	assert.Equal(t, 1, store.rowsForCourse(5))
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateProgress(t *testing.T) {
	tests := []struct {
		name     string
		upd      models.ProgressUpdate
		wantErr  error
		wantCert bool
	}{
		{
			name: "in progress",
			upd:  models.ProgressUpdate{CompletionStatus: models.StatusInProgress, ProgressPercentage: 40},
		},
		{
			name:     "completed with certificate",
			upd:      models.ProgressUpdate{CompletionStatus: models.StatusCompleted, ProgressPercentage: 100, CertificateIssued: boolPtr(true)},
			wantCert: true,
		},
		{
			name:    "unknown status",
			upd:     models.ProgressUpdate{CompletionStatus: "Paused", ProgressPercentage: 10},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "progress above range",
			upd:     models.ProgressUpdate{CompletionStatus: models.StatusInProgress, ProgressPercentage: 101},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "negative progress",
			upd:     models.ProgressUpdate{CompletionStatus: models.StatusInProgress, ProgressPercentage: -1},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "certificate without completion",
			upd:     models.ProgressUpdate{CompletionStatus: models.StatusInProgress, ProgressPercentage: 90, CertificateIssued: boolPtr(true)},
			wantErr: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.addStudent(10)
			store.addCourse(5, 30, 1)
			id := store.addEnrollmentRow(10, 5)
			svc := newTestEnrollmentService(store)

			updated, err := svc.UpdateProgress(context.Background(), admin, id, tt.upd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.upd.CompletionStatus, updated.CompletionStatus)
			assert.Equal(t, tt.upd.ProgressPercentage, updated.ProgressPercentage)
			assert.Equal(t, tt.wantCert, updated.CertificateIssued)
		})
	}
}

func TestUpdateProgress_LeavingCompletedClearsCertificate(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addCourse(5, 30, 1)
	id := store.addEnrollmentRow(10, 5)
	svc := newTestEnrollmentService(store)
	ctx := context.Background()

	_, err := svc.UpdateProgress(ctx, admin, id, models.ProgressUpdate{
		CompletionStatus: models.StatusCompleted, ProgressPercentage: 100, CertificateIssued: boolPtr(true),
	})
	require.NoError(t, err)

	kept, err := svc.UpdateProgress(ctx, admin, id, models.ProgressUpdate{
		CompletionStatus: models.StatusCompleted, ProgressPercentage: 100,
	})
	require.NoError(t, err)
	assert.True(t, kept.CertificateIssued)

	reopened, err := svc.UpdateProgress(ctx, admin, id, models.ProgressUpdate{
		CompletionStatus: models.StatusInProgress, ProgressPercentage: 80,
	})
	require.NoError(t, err)
	assert.False(t, reopened.CertificateIssued)
}

func TestUpdateProgress_NotFound(t *testing.T) {
	svc := newTestEnrollmentService(newMemStore())

	_, err := svc.UpdateProgress(context.Background(), admin, 42, models.ProgressUpdate{
		CompletionStatus: models.StatusInProgress, ProgressPercentage: 10,
	})
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestListEnrollments_StudentSeesOwnRows(t *testing.T) {
	store := newMemStore()
	store.addCourse(5, 30, 2)
	store.addEnrollmentRow(10, 5)
	store.addEnrollmentRow(11, 5)
	svc := newTestEnrollmentService(store)
	student := models.Principal{Role: models.RoleStudent, StudentID: 10}

	all, err := svc.ListEnrollments(context.Background(), admin, models.EnrollmentFilter{CourseID: 5})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.ListEnrollments(context.Background(), student, models.EnrollmentFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, int64(10), own[0].StudentID)

	_, err = svc.ListEnrollments(context.Background(), student, models.EnrollmentFilter{StudentID: 11})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestGetEnrollment(t *testing.T) {
	store := newMemStore()
	store.addCourse(5, 30, 1)
	id := store.addEnrollmentRow(10, 5)
	svc := newTestEnrollmentService(store)

	got, err := svc.GetEnrollment(context.Background(), admin, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = svc.GetEnrollment(context.Background(), models.Principal{Role: models.RoleStudent, StudentID: 11}, id)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.GetEnrollment(context.Background(), admin, id+1)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestReconcileEnrolledCount(t *testing.T) {
	store := newMemStore()
	store.addCourse(5, 30, 9)
	store.addEnrollmentRow(10, 5)
	store.addEnrollmentRow(11, 5)
	svc := newTestEnrollmentService(store)

	course, err := svc.ReconcileEnrolledCount(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, course.EnrolledCount)
	assert.Equal(t, 2, store.course(5).EnrolledCount)

	again, err := svc.ReconcileEnrolledCount(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, again.EnrolledCount)
}

func TestReconcileEnrolledCount_Errors(t *testing.T) {
	svc := newTestEnrollmentService(newMemStore())

	_, err := svc.ReconcileEnrolledCount(context.Background(), models.Principal{Role: models.RoleStudent, StudentID: 1}, 5)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.ReconcileEnrolledCount(context.Background(), admin, 5)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []models.Course
}

func (p *recordingPublisher) PublishSeats(course *models.Course) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, *course)
}

func TestSeatPublisher_SeesCommittedCounts(t *testing.T) {
	store := newMemStore()
	store.addStudent(10)
	store.addStudent(11)
	store.addCourse(5, 1, 0)
	pub := &recordingPublisher{}
	svc := NewEnrollmentService(store, zerolog.Nop(), WithSeatPublisher(pub))

	enrollment, err := svc.Enroll(context.Background(), admin, 10, 5)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), admin, 11, 5)
	require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	require.NoError(t, svc.Unenroll(context.Background(), admin, enrollment.ID))

	require.Len(t, pub.updates, 2)
	assert.Equal(t, 1, pub.updates[0].EnrolledCount)
	assert.Equal(t, 0, pub.updates[1].EnrolledCount)
	assert.Equal(t, int64(5), pub.updates[1].ID)
	assert.Equal(t, int64(1), pub.updates[0].SeatVersion)
	assert.Equal(t, int64(2), pub.updates[1].SeatVersion)
	assert.Equal(t, int64(2), store.course(5).SeatVersion, "a rejected admission leaves the version alone")
}
