package services

import (
	"github.com/rs/zerolog"

	"github.com/edutrack/edutrack/internal/app/repositories"
)

// Services defined in this package:
// - StudentService: student profiles
// - CourseService: the course catalog
// - EnrollmentService: admission, unenrollment, progress and counter repair
type Services struct {
	StudentService    StudentService
	CourseService     CourseService
	EnrollmentService EnrollmentService
}

// NewServices wires every service to its repositories
func NewServices(repos *repositories.Repositories, logger zerolog.Logger, opts ...EnrollmentOption) *Services {
	return &Services{
		StudentService:    NewStudentService(repos.StudentRepository),
		CourseService:     NewCourseService(repos.CourseRepository),
		EnrollmentService: NewEnrollmentService(repos.EnrollmentStore, logger.With().Str("component", "enrollment").Logger(), opts...),
	}
}
