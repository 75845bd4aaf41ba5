package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/app/repositories"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

// memStore is an in-memory EnrollmentUnitOfWork. Each row operation is atomic
// under mu, operations of concurrent transactions interleave, and a failed
// transaction replays its undo log in reverse.
type memStore struct {
	mu          sync.Mutex
	students    map[int64]*models.Student
	courses     map[int64]*models.Course
	enrollments map[int64]*models.Enrollment
	nextID      int64

	// failIncrement, when set, is returned by IncrementEnrolledCount after the
	// enrollment row has been inserted.
	failIncrement error
}

var _ repositories.EnrollmentUnitOfWork = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		students:    map[int64]*models.Student{},
		courses:     map[int64]*models.Course{},
		enrollments: map[int64]*models.Enrollment{},
		nextID:      1000,
	}
}

func (s *memStore) addStudent(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[id] = &models.Student{ID: id, Email: "student@example.com", FullName: "Student"}
}

func (s *memStore) addCourse(id int64, maxCapacity, enrolled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.courses[id] = &models.Course{ID: id, CourseCode: "C-101", Title: "Course", MaxCapacity: maxCapacity, EnrolledCount: enrolled}
}

// addEnrollmentRow inserts a row without touching the counter, to model drift
func (s *memStore) addEnrollmentRow(studentID, courseID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.enrollments[s.nextID] = models.NewEnrollment(studentID, courseID, time.Now())
	s.enrollments[s.nextID].ID = s.nextID
	return s.nextID
}

func (s *memStore) course(id int64) models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.courses[id]
}

func (s *memStore) rowsForCourse(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.enrollments {
		if e.CourseID == id {
			n++
		}
	}
	return n
}

func (s *memStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repositories.EnrollmentTx) error) error {
	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *memStore) ListEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]*models.EnrollmentDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.EnrollmentDetail{}
	for _, e := range s.enrollments {
		if filter.StudentID > 0 && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID > 0 && e.CourseID != filter.CourseID {
			continue
		}
		out = append(out, &models.EnrollmentDetail{Enrollment: *e})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrollmentDate.After(out[j].EnrollmentDate) })
	return out, nil
}

// memTx records how to revert each applied operation. Callers hold s.mu
// while the undo functions run.
type memTx struct {
	s    *memStore
	undo []func()
}

func (t *memTx) StudentExists(ctx context.Context, id int64) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	_, ok := t.s.students[id]
	return ok, nil
}

func (t *memTx) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) LockCourse(ctx context.Context, id int64) (*models.Course, error) {
	return t.GetCourse(ctx, id)
}

func (t *memTx) EnrollmentExists(ctx context.Context, studentID, courseID int64) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, e := range t.s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	return t.s.GetEnrollment(ctx, id)
}

func (t *memTx) InsertEnrollment(ctx context.Context, e *models.Enrollment) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, existing := range t.s.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return apperrors.ErrDuplicateEnrollment
		}
	}
	t.s.nextID++
	e.ID = t.s.nextID
	cp := *e
	t.s.enrollments[e.ID] = &cp
	id := e.ID
	t.undo = append(t.undo, func() { delete(t.s.enrollments, id) })
	return nil
}

func (t *memTx) DeleteEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	e, ok := t.s.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	delete(t.s.enrollments, id)
	t.undo = append(t.undo, func() { t.s.enrollments[id] = e })
	cp := *e
	return &cp, nil
}

func (t *memTx) UpdateProgress(ctx context.Context, id int64, status models.CompletionStatus, progress int, certificate bool) (*models.Enrollment, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	e, ok := t.s.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	prev := *e
	e.CompletionStatus = status
	e.ProgressPercentage = progress
	e.CertificateIssued = certificate
	e.UpdatedAt = time.Now()
	t.undo = append(t.undo, func() { *e = prev })
	cp := *e
	return &cp, nil
}

func (t *memTx) CountEnrollments(ctx context.Context, courseID int64) (int, error) {
	return t.s.rowsForCourse(courseID), nil
}

// adjust applies fn to a course row and records the previous counter
func (t *memTx) adjust(id int64, fn func(c *models.Course) error) (*models.Course, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	before, version := c.EnrolledCount, c.SeatVersion
	if err := fn(c); err != nil {
		return nil, err
	}
	c.SeatVersion++
	delta := c.EnrolledCount - before
	t.undo = append(t.undo, func() {
		c.EnrolledCount -= delta
		c.SeatVersion = version
	})
	cp := *c
	return &cp, nil
}

func (t *memTx) IncrementEnrolledCount(ctx context.Context, id int64) (*models.Course, error) {
	if t.s.failIncrement != nil {
		return nil, t.s.failIncrement
	}
	return t.adjust(id, func(c *models.Course) error {
		if c.EnrolledCount >= c.MaxCapacity {
			return apperrors.ErrCapacityExceeded
		}
		c.EnrolledCount++
		return nil
	})
}

func (t *memTx) DecrementEnrolledCount(ctx context.Context, id int64) (*models.Course, error) {
	return t.adjust(id, func(c *models.Course) error {
		if c.EnrolledCount > 0 {
			c.EnrolledCount--
		}
		return nil
	})
}

func (t *memTx) SetEnrolledCount(ctx context.Context, id int64, count int) (*models.Course, error) {
	return t.adjust(id, func(c *models.Course) error {
		if count > c.MaxCapacity {
			return apperrors.ErrEnrollmentsOverCapacity
		}
		c.EnrolledCount = count
		return nil
	})
}
