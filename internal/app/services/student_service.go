package services

import (
	"context"
	"strings"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/validation"
)

// StudentStore is the persistence a StudentService needs.
// *repositories.StudentRepository satisfies it.
type StudentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	Update(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error)
	Delete(ctx context.Context, id int64) error
}

// StudentService defines the interface for student-related operations
type StudentService interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error)
	UpdateStudent(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// studentServiceImpl implements the StudentService interface
type studentServiceImpl struct {
	studentRepo StudentStore
}

// NewStudentService creates a new student service instance
func NewStudentService(studentRepo StudentStore) StudentService {
	return &studentServiceImpl{
		studentRepo: studentRepo,
	}
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// validateStudent normalizes and validates a new student
func (s *studentServiceImpl) validateStudent(student *models.Student) error {
	if student == nil {
		return apperrors.NewValidationError("student is required")
	}

	student.FullName = strings.TrimSpace(student.FullName)
	student.Phone = normalizeOptional(student.Phone)
	student.Bio = normalizeOptional(student.Bio)
	student.ProfileImageURL = normalizeOptional(student.ProfileImageURL)

	return validation.First(
		validation.Name("full_name", student.FullName),
		validation.String("phone", optionalValue(student.Phone)).Optional().Length(0, 20),
		validation.String("profile_image_url", optionalValue(student.ProfileImageURL)).Optional().Length(0, 500),
	)
}

// CreateStudent creates a new student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student) error {
	if err := s.validateStudent(student); err != nil {
		return err
	}

	student.Email = strings.ToLower(strings.TrimSpace(student.Email))
	if err := validation.Email(student.Email).Check(); err != nil {
		return err
	}

	return s.studentRepo.Create(ctx, student)
}

// GetStudentByID retrieves a student by ID
func (s *studentServiceImpl) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("student id must be positive")
	}
	return s.studentRepo.GetByID(ctx, id)
}

// ListStudents returns one page of students and the total count
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.studentRepo.List(ctx, filter)
}

// trimOptional trims a provided value but keeps "" so it can clear the field
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// UpdateStudent applies a partial profile update. Email is immutable.
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error) {
	if id <= 0 {
		return nil, apperrors.NewValidationError("student id must be positive")
	}

	upd.FullName = trimOptional(upd.FullName)
	upd.Phone = trimOptional(upd.Phone)
	upd.Bio = trimOptional(upd.Bio)
	upd.ProfileImageURL = trimOptional(upd.ProfileImageURL)

	rules := []*validation.StringRule{
		validation.String("phone", optionalValue(upd.Phone)).Optional().Length(0, 20),
		validation.String("profile_image_url", optionalValue(upd.ProfileImageURL)).Optional().Length(0, 500),
	}
	if upd.FullName != nil {
		rules = append(rules, validation.Name("full_name", *upd.FullName))
	}
	if err := validation.First(rules...); err != nil {
		return nil, err
	}

	return s.studentRepo.Update(ctx, id, upd)
}

// DeleteStudent deletes a student without enrollments
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.NewValidationError("student id must be positive")
	}
	return s.studentRepo.Delete(ctx, id)
}
