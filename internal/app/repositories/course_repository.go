package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/emre/learnhub/internal/app/models"
)

// Course error types
var (
	ErrCourseNotFound = errors.New("course not found")
)

// ICourseRepository defines the interface for course-related database operations
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	GetAll(ctx context.Context) ([]*models.Course, error)
	GetByInstructorID(ctx context.Context, instructorID int64) ([]*models.Course, error)
	GetByStudentID(ctx context.Context, studentID int64) ([]*models.Course, error)
	SearchByTitle(ctx context.Context, title string) ([]*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

// courseColumns are the course fields selected by every read, with the
// instructor identity projection joined in.
var courseColumns = []string{
	"c.id", "c.title", "c.description", "c.price", "c.instructor_id",
	"c.created_at", "c.updated_at",
	"u.username", "u.email",
}

func courseSelect() squirrel.SelectBuilder {
	return squirrel.Select(courseColumns...).
		From("courses c").
		Join("users u ON u.id = c.instructor_id").
		PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new course and sets the generated id and timestamps.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := squirrel.Insert("courses").
		Columns("title", "description", "price", "instructor_id").
		Values(course.Title, course.Description, course.Price, course.InstructorID).
		Suffix("RETURNING id, created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID with its instructor joined.
// Returns nil without error when no course matches.
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := courseSelect().Where("c.id = ?", id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// GetAll retrieves all courses with their instructors joined.
func (r *CourseRepository) GetAll(ctx context.Context) ([]*models.Course, error) {
	sql, args, err := courseSelect().OrderBy("c.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryCourses(ctx, sql, args...)
}

// GetByInstructorID retrieves all courses owned by the given instructor.
func (r *CourseRepository) GetByInstructorID(ctx context.Context, instructorID int64) ([]*models.Course, error) {
	sql, args, err := courseSelect().
		Where("c.instructor_id = ?", instructorID).
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryCourses(ctx, sql, args...)
}

// GetByStudentID retrieves all courses the given student is enrolled in.
func (r *CourseRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*models.Course, error) {
	sql, args, err := courseSelect().
		Join("enrollments e ON e.course_id = c.id").
		Where("e.user_id = ?", studentID).
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryCourses(ctx, sql, args...)
}

// SearchByTitle retrieves courses whose title contains the given text,
// case-insensitively.
func (r *CourseRepository) SearchByTitle(ctx context.Context, title string) ([]*models.Course, error) {
	sql, args, err := courseSelect().
		Where("c.title ILIKE ?", "%"+title+"%").
		OrderBy("c.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	return r.queryCourses(ctx, sql, args...)
}

// Update persists changed course fields. The instructor_id column is never
// touched; ownership is immutable.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := squirrel.Update("courses").
		Set("title", course.Title).
		Set("description", course.Description).
		Set("price", course.Price).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where("id = ?", course.ID).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&course.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("error updating course: %w", err)
	}

	return nil
}

// Delete deletes a course by ID. Enrollments are removed by the cascading
// foreign key.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("courses").
		Where("id = ?", id).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting course: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCourseNotFound
	}

	return nil
}

func (r *CourseRepository) queryCourses(ctx context.Context, sql string, args ...interface{}) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return courses, nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var course models.Course
	var instructor models.User
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.InstructorID,
		&course.CreatedAt,
		&course.UpdatedAt,
		&instructor.Username,
		&instructor.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	instructor.ID = course.InstructorID
	instructor.Role = models.RoleInstructor
	course.Instructor = &instructor

	return &course, nil
}
