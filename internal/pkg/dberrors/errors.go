package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Constraint names declared in migrations/001_init.sql.
const (
	ConstraintStudentEmail      = "students_email_key"
	ConstraintCourseCode        = "courses_course_code_key"
	ConstraintEnrollmentPair    = "enrollments_student_id_course_id_key"
	ConstraintCourseCapacity    = "courses_enrolled_count_check"
	ConstraintEnrollmentStudent = "enrollments_student_id_fkey"
	ConstraintEnrollmentCourse  = "enrollments_course_id_fkey"
)

func pgCode(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == codeUniqueViolation && pgErr.ConstraintName == constraintName
}

// IsForeignKeyViolation reports a foreign key violation for the named constraint,
// or for any constraint when constraintName is empty.
func IsForeignKeyViolation(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == codeForeignKeyViolation &&
		(constraintName == "" || pgErr.ConstraintName == constraintName)
}

// IsCheckViolation reports a CHECK constraint violation for the named constraint.
func IsCheckViolation(err error, constraintName string) bool {
	pgErr, ok := pgCode(err)
	return ok && pgErr.Code == codeCheckViolation && pgErr.ConstraintName == constraintName
}
