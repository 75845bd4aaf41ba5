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

var studentColumns = []string{
	"id", "email", "full_name", "phone", "bio", "profile_image_url", "created_at", "updated_at",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db Querier
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db Querier) *StudentRepository {
	return &StudentRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *StudentRepository) WithTx(tx pgx.Tx) *StudentRepository {
	return &StudentRepository{db: tx}
}

func scanStudent(row pgx.Row, s *models.Student) error {
	return row.Scan(&s.ID, &s.Email, &s.FullName, &s.Phone, &s.Bio, &s.ProfileImageURL, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a student and fills in the generated fields
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := psql.Insert("students").
		Columns("email", "full_name", "phone", "bio", "profile_image_url").
		Values(student.Email, student.FullName, student.Phone, student.Bio, student.ProfileImageURL).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.ConstraintStudentEmail) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", student.Email).Msg("Error executing create student query")
		return apperrors.NewStorageError("failed to create student", err)
	}

	return nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := psql.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student := &models.Student{}
	if err := scanStudent(r.db.QueryRow(ctx, sql, args...), student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, apperrors.NewStorageError("failed to get student", err)
	}

	return student, nil
}

// Exists reports whether a student with id exists
func (r *StudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error checking student existence")
		return false, apperrors.NewStorageError("failed to check student", err)
	}
	return exists, nil
}

// List returns one page of students, newest first, plus the total match count
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("students").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, apperrors.NewStorageError("failed to count students", err)
	}

	sql, args, err := psql.Select(studentColumns...).
		From("students").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(filter.Offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, apperrors.NewStorageError("failed to list students", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student := &models.Student{}
		if err := scanStudent(rows, student); err != nil {
			return nil, 0, apperrors.NewStorageError("failed to scan student", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewStorageError("failed to iterate students", err)
	}

	return students, total, nil
}

// Update applies a partial profile update; nil fields keep their stored
// value and an empty optional field is stored as NULL.
func (r *StudentRepository) Update(ctx context.Context, id int64, upd models.StudentUpdate) (*models.Student, error) {
	sql, args, err := psql.Update("students").
		Set("full_name", squirrel.Expr("COALESCE(?, full_name)", upd.FullName)).
		Set("phone", squirrel.Expr("NULLIF(COALESCE(?, phone), '')", upd.Phone)).
		Set("bio", squirrel.Expr("NULLIF(COALESCE(?, bio), '')", upd.Bio)).
		Set("profile_image_url", squirrel.Expr("NULLIF(COALESCE(?, profile_image_url), '')", upd.ProfileImageURL)).
		Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(studentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update student query: %w", err)
	}

	student := &models.Student{}
	if err := scanStudent(r.db.QueryRow(ctx, sql, args...), student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing update student query")
		return nil, apperrors.NewStorageError("failed to update student", err)
	}

	return student, nil
}

// Delete removes a student. Students with enrollments are refused.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, dberrors.ConstraintEnrollmentStudent) {
			return apperrors.ErrStudentHasEnrollments
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return apperrors.NewStorageError("failed to delete student", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}
