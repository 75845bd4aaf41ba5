package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("ada@example.com").Check())
	assert.NoError(t, Email("  Ada.Lovelace+x@Example.co.uk ").Check())

	err := Email("not-an-email").Check()
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "email must be a valid email address", apperrors.PublicMessage(err))

	assert.EqualError(t, Email("").Check(), "email is required")
}

func TestCourseCode(t *testing.T) {
	assert.NoError(t, CourseCode("GO-101").Check())
	assert.NoError(t, CourseCode("cs_2024").Check())

	assert.EqualError(t, CourseCode("GO").Check(), "course_code must be at least 3 characters")
	assert.Error(t, CourseCode("GO 101").Check())
	assert.Error(t, CourseCode(string(make([]byte, 51))).Check())
}

func TestOptionalAndFirst(t *testing.T) {
	assert.NoError(t, String("bio", "").Optional().Check())

	err := First(
		Name("full_name", "Ada Lovelace"),
		String("phone", "1").Optional().Length(5, 20),
		Email("bad"),
	)
	assert.EqualError(t, err, "phone must be at least 5 characters")
}
