package services

import (
	"context"
	"strings"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/validation"
)

// Course defaults applied on create
const (
	DefaultMaxCapacity = 30
	DefaultCourseLevel = "Beginner"
)

// CourseStore is the persistence a CourseService needs.
// *repositories.CourseRepository satisfies it.
type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, int64, error)
	Update(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// CourseService defines the interface for course-related operations
type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, int64, error)
	UpdateCourse(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	courseRepo CourseStore
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo CourseStore) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
	}
}

func validateNumbers(maxCapacity, durationWeeks *int, price *float64) error {
	if maxCapacity != nil && *maxCapacity < 0 {
		return apperrors.NewValidationError("max_capacity cannot be negative")
	}
	if durationWeeks != nil && *durationWeeks <= 0 {
		return apperrors.NewValidationError("duration_weeks must be positive")
	}
	if price != nil && *price < 0 {
		return apperrors.NewValidationError("price cannot be negative")
	}
	return nil
}

// CreateCourse creates a course. Enrollment always starts at zero.
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return apperrors.NewValidationError("course is required")
	}

	course.CourseCode = strings.TrimSpace(course.CourseCode)
	course.Title = strings.TrimSpace(course.Title)
	course.Description = normalizeOptional(course.Description)
	course.InstructorName = normalizeOptional(course.InstructorName)
	course.ImageURL = normalizeOptional(course.ImageURL)
	course.Category = normalizeOptional(course.Category)
	course.Level = strings.TrimSpace(course.Level)

	if course.MaxCapacity == 0 {
		course.MaxCapacity = DefaultMaxCapacity
	}
	if course.Level == "" {
		course.Level = DefaultCourseLevel
	}
	course.EnrolledCount = 0

	if err := validation.First(
		validation.CourseCode(course.CourseCode),
		validation.String("title", course.Title).Length(0, 255),
	); err != nil {
		return err
	}
	if err := validateNumbers(&course.MaxCapacity, course.DurationWeeks, &course.Price); err != nil {
		return err
	}

	return s.courseRepo.Create(ctx, course)
}

// GetCourseByID retrieves a course by ID
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("course id must be positive")
	}
	return s.courseRepo.GetByID(ctx, id)
}

// ListCourses returns one page of courses and the total count
func (s *courseServiceImpl) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, int64, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Level = strings.TrimSpace(filter.Level)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.courseRepo.List(ctx, filter)
}

// UpdateCourse applies a partial update. A capacity below the current
// enrolled count is rejected by the repository.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("course id must be positive")
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty")
		}
		upd.Title = &title
	}
	if upd.Level != nil {
		level := strings.TrimSpace(*upd.Level)
		if level == "" {
			return nil, apperrors.NewValidationError("level cannot be empty")
		}
		upd.Level = &level
	}
	if err := validateNumbers(upd.MaxCapacity, upd.DurationWeeks, upd.Price); err != nil {
		return nil, err
	}

	return s.courseRepo.Update(ctx, id, upd)
}

// DeleteCourse deletes a course without enrollments
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("course id must be positive")
	}
	return s.courseRepo.Delete(ctx, id)
}
