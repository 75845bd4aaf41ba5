package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	appModels "github.com/edutrack/edutrack/internal/app/models"
	appRepos "github.com/edutrack/edutrack/internal/app/repositories"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

var defaultStudents = []appModels.Student{
	{Email: "ada.lovelace@edutrack.app", FullName: "Ada Lovelace", Bio: strPtr("Analytical engines enthusiast")},
	{Email: "alan.turing@edutrack.app", FullName: "Alan Turing"},
	{Email: "grace.hopper@edutrack.app", FullName: "Grace Hopper", Phone: strPtr("+1 555 0100")},
}

var defaultCourses = []appModels.Course{
	{
		CourseCode:     "GO-101",
		Title:          "Practical Go",
		Description:    strPtr("Build services with Go, from the standard library up."),
		InstructorName: strPtr("Rob Pike"),
		MaxCapacity:    30,
		DurationWeeks:  intPtr(8),
		Category:       strPtr("Programming"),
		Level:          "Beginner",
	},
	{
		CourseCode:     "SQL-201",
		Title:          "PostgreSQL in Production",
		Description:    strPtr("Transactions, locking and query plans."),
		InstructorName: strPtr("Edgar Codd"),
		MaxCapacity:    20,
		DurationWeeks:  intPtr(6),
		Price:          49,
		Category:       strPtr("Databases"),
		Level:          "Intermediate",
	},
	{
		CourseCode:    "DS-301",
		Title:         "Distributed Systems Seminar",
		MaxCapacity:   2,
		DurationWeeks: intPtr(4),
		Price:         99,
		Category:      strPtr("Systems"),
		Level:         "Advanced",
	},
}

// CreateDefaultData inserts demo students and courses. Rows that already
// exist are left untouched, so running it again is harmless.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Students/Courses)...")
	var finalErr error

	for i := range defaultStudents {
		student := defaultStudents[i]
		err := repos.StudentRepository.Create(ctx, &student)
		switch {
		case err == nil:
			lgr.Info().Str("email", student.Email).Int64("id", student.ID).Msg("Default student created")
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
			lgr.Debug().Str("email", student.Email).Msg("Default student already exists")
		default:
			lgr.Error().Err(err).Str("email", student.Email).Msg("Error creating default student")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for i := range defaultCourses {
		course := defaultCourses[i]
		err := repos.CourseRepository.Create(ctx, &course)
		switch {
		case err == nil:
			lgr.Info().Str("course_code", course.CourseCode).Int64("id", course.ID).Msg("Default course created")
		case errors.Is(err, apperrors.ErrCourseCodeAlreadyExists):
			lgr.Debug().Str("course_code", course.CourseCode).Msg("Default course already exists")
		default:
			lgr.Error().Err(err).Str("course_code", course.CourseCode).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if finalErr != nil {
		lgr.Warn().Err(finalErr).Msg("Default data creation finished with errors")
	} else {
		lgr.Info().Msg("Default data check/creation completed")
	}
	return finalErr
}
