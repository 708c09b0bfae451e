package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IEnrollmentRepository defines the interface for enrollment database operations
type IEnrollmentRepository interface {
	Enroll(ctx context.Context, courseID, userID int64) (int64, error)
	IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error)
	GetStudentIDs(ctx context.Context, courseID int64) ([]int64, error)
	GetStudentIDsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]int64, error)
}

// EnrollmentRepository handles database operations for course enrollments
type EnrollmentRepository struct {
	db *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll adds a student to a course and returns the enrollment id.
func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID, userID int64) (int64, error) {
	query := squirrel.Insert("enrollments").
		Columns("course_id", "user_id").
		Values(courseID, userID).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}

	return id, nil
}

// IsEnrolled checks if a student is already enrolled in a course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	query := squirrel.Select("1").
		From("enrollments").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}

	var exists int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error executing query: %w", err)
	}

	return true, nil
}

// GetStudentIDsByCourse returns the enrolled student ids for each of the
// given courses in a single query, keyed by course id and in enrollment
// order. Courses without enrollments have no entry in the result.
func (r *EnrollmentRepository) GetStudentIDsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]int64, error) {
	studentIDs := make(map[int64][]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return studentIDs, nil
	}

	query := squirrel.Select("course_id", "user_id").
		From("enrollments").
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("course_id", "enrolled_at", "id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var courseID, userID int64
		if err := rows.Scan(&courseID, &userID); err != nil {
			return nil, err
		}
		studentIDs[courseID] = append(studentIDs[courseID], userID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return studentIDs, nil
}

// GetStudentIDs returns the ids of students enrolled in a course, in
// enrollment order.
func (r *EnrollmentRepository) GetStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	query := squirrel.Select("user_id").
		From("enrollments").
		Where("course_id = ?", courseID).
		OrderBy("enrolled_at", "id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var studentIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		studentIDs = append(studentIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return studentIDs, nil
}
