package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/dberrors"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

var courseColumns = []string{
	"id", "course_code", "title", "description", "instructor_name", "max_capacity", "enrolled_count",
	"duration_weeks", "price", "image_url", "category", "level", "created_at", "updated_at", "seat_version",
}

// CourseRepository handles course database operations, including the
// enrolled_count counter.
type CourseRepository struct {
	db Querier
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db Querier) *CourseRepository {
	return &CourseRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *CourseRepository) WithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

func scanCourse(row pgx.Row, c *models.Course) error {
	return row.Scan(
		&c.ID, &c.CourseCode, &c.Title, &c.Description, &c.InstructorName, &c.MaxCapacity, &c.EnrolledCount,
		&c.DurationWeeks, &c.Price, &c.ImageURL, &c.Category, &c.Level, &c.CreatedAt, &c.UpdatedAt, &c.SeatVersion,
	)
}

// queryCourse runs a statement that returns a single course row. ErrNoRows is
// translated into notFound.
func (r *CourseRepository) queryCourse(ctx context.Context, b squirrel.Sqlizer, op string, notFound error) (*models.Course, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	course := &models.Course{}
	if err := scanCourse(r.db.QueryRow(ctx, sql, args...), course); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, notFound
		case dberrors.IsCheckViolation(err, dberrors.ConstraintCourseCapacity):
			return nil, err
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing course query")
		return nil, apperrors.NewStorageError("failed to "+op, err)
	}
	return course, nil
}

// Create inserts a course and fills in the generated fields
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	q := psql.Insert("courses").
		Columns("course_code", "title", "description", "instructor_name", "max_capacity",
			"duration_weeks", "price", "image_url", "category", "level").
		Values(course.CourseCode, course.Title, course.Description, course.InstructorName, course.MaxCapacity,
			course.DurationWeeks, course.Price, course.ImageURL, course.Category, course.Level).
		Suffix("RETURNING " + joinColumns(courseColumns))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := scanCourse(r.db.QueryRow(ctx, sql, args...), course); err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintCourseCode) {
			return apperrors.ErrCourseCodeAlreadyExists
		}
		logger.Error().Err(err).Str("courseCode", course.CourseCode).Msg("Error executing create course query")
		return apperrors.NewStorageError("failed to create course", err)
	}

	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.queryCourse(ctx,
		psql.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}),
		"get course", apperrors.ErrCourseNotFound)
}

// GetByIDForUpdate retrieves a course and locks its row until the surrounding
// transaction ends. Only meaningful on a tx-bound repository.
func (r *CourseRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Course, error) {
	return r.queryCourse(ctx,
		psql.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"),
		"lock course", apperrors.ErrCourseNotFound)
}

// List returns one page of courses, newest first, plus the total match count
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, int64, error) {
	where := squirrel.And{}
	if filter.Category != "" {
		where = append(where, squirrel.Eq{"category": filter.Category})
	}
	if filter.Level != "" {
		where = append(where, squirrel.Eq{"level": filter.Level})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"course_code": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("courses").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, apperrors.NewStorageError("failed to count courses", err)
	}

	sql, args, err := psql.Select(courseColumns...).
		From("courses").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, 0, apperrors.NewStorageError("failed to list courses", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course := &models.Course{}
		if err := scanCourse(rows, course); err != nil {
			return nil, 0, apperrors.NewStorageError("failed to scan course", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("failed to iterate courses", err)
	}

	return courses, total, nil
}

// Update applies a partial update; nil fields keep their stored value. The
// capacity CHECK constraint rejects a max_capacity below enrolled_count.
func (r *CourseRepository) Update(ctx context.Context, id int64, upd models.CourseUpdate) (*models.Course, error) {
	q := psql.Update("courses").
		Set("title", squirrel.Expr("COALESCE(?, title)", upd.Title)).
		Set("description", squirrel.Expr("COALESCE(?, description)", upd.Description)).
		Set("instructor_name", squirrel.Expr("COALESCE(?, instructor_name)", upd.InstructorName)).
		Set("max_capacity", squirrel.Expr("COALESCE(?::integer, max_capacity)", upd.MaxCapacity)).
		Set("duration_weeks", squirrel.Expr("COALESCE(?::integer, duration_weeks)", upd.DurationWeeks)).
		Set("price", squirrel.Expr("COALESCE(?::numeric, price)", upd.Price)).
		Set("image_url", squirrel.Expr("COALESCE(?, image_url)", upd.ImageURL)).
		Set("category", squirrel.Expr("COALESCE(?, category)", upd.Category)).
		Set("level", squirrel.Expr("COALESCE(?, level)", upd.Level)).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(courseColumns))

	course, err := r.queryCourse(ctx, q, "update course", apperrors.ErrCourseNotFound)
	if dberrors.IsCheckViolation(err, dberrors.ConstraintCourseCapacity) {
		return nil, apperrors.ErrCapacityBelowEnrolled
	}
	return course, err
}

// Delete removes a course. Courses with enrollments are refused.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, dberrors.ConstraintEnrollmentCourse) {
			return apperrors.ErrCourseHasEnrollments
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return apperrors.NewStorageError("failed to delete course", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// Every enrolled_count write also bumps seat_version. Writers serialize on the
// row lock, so versions of one course are ordered like its commits.

// IncrementEnrolledCount takes one seat with a single conditional UPDATE. When
// the course is already full no row matches and ErrCapacityExceeded is
// returned; concurrent callers serialize on the row lock and re-check the
// condition against the committed value.
func (r *CourseRepository) IncrementEnrolledCount(ctx context.Context, id int64) (*models.Course, error) {
	q := psql.Update("courses").
		Set("enrolled_count", squirrel.Expr("enrolled_count + 1")).
		Set("seat_version", squirrel.Expr("seat_version + 1")).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Where("enrolled_count < max_capacity").
		Suffix("RETURNING " + joinColumns(courseColumns))

	return r.queryCourse(ctx, q, "increment enrolled count", apperrors.ErrCapacityExceeded)
}

// DecrementEnrolledCount releases one seat, never going below zero
func (r *CourseRepository) DecrementEnrolledCount(ctx context.Context, id int64) (*models.Course, error) {
	q := psql.Update("courses").
		Set("enrolled_count", squirrel.Expr("GREATEST(0, enrolled_count - 1)")).
		Set("seat_version", squirrel.Expr("seat_version + 1")).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(courseColumns))

	return r.queryCourse(ctx, q, "decrement enrolled count", apperrors.ErrCourseNotFound)
}

// SetEnrolledCount overwrites the cached counter, e.g. after a recount
func (r *CourseRepository) SetEnrolledCount(ctx context.Context, id int64, count int) (*models.Course, error) {
	q := psql.Update("courses").
		Set("enrolled_count", count).
		Set("seat_version", squirrel.Expr("seat_version + 1")).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(courseColumns))

	course, err := r.queryCourse(ctx, q, "set enrolled count", apperrors.ErrCourseNotFound)
	if dberrors.IsCheckViolation(err, dberrors.ConstraintCourseCapacity) {
		return nil, apperrors.ErrEnrollmentsOverCapacity
	}
	return course, err
}
