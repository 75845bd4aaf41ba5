package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: ConstraintEnrollmentPair})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: ConstraintEnrollmentCourse}
	check := &pgconn.PgError{Code: "23514", ConstraintName: ConstraintCourseCapacity}

	assert.True(t, IsDuplicateConstraintError(dup, ConstraintEnrollmentPair))
	assert.False(t, IsDuplicateConstraintError(dup, ConstraintStudentEmail))

	assert.True(t, IsForeignKeyViolation(fk, ""))
	assert.True(t, IsForeignKeyViolation(fk, ConstraintEnrollmentCourse))
	assert.False(t, IsForeignKeyViolation(fk, ConstraintEnrollmentStudent))

	assert.True(t, IsCheckViolation(check, ConstraintCourseCapacity))
	assert.False(t, IsCheckViolation(dup, ConstraintCourseCapacity))

	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), ConstraintEnrollmentPair))
}
