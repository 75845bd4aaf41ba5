package repositories

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edutrack/edutrack/internal/db"
)

// Querier is the part of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs standalone or inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// psql builds Postgres ($n) placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// Repositories holds all the repository instances
type Repositories struct {
	StudentRepository    *StudentRepository
	CourseRepository     *CourseRepository
	EnrollmentRepository *EnrollmentRepository
	EnrollmentStore      *EnrollmentStore
}

// NewRepositories initializes all repositories on top of one pool
func NewRepositories(database *db.PostgresDB) *Repositories {
	students := NewStudentRepository(database.Pool)
	courses := NewCourseRepository(database.Pool)
	enrollments := NewEnrollmentRepository(database.Pool)

	return &Repositories{
		StudentRepository:    students,
		CourseRepository:     courses,
		EnrollmentRepository: enrollments,
		EnrollmentStore:      NewEnrollmentStore(database, students, courses, enrollments),
	}
}
