package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/emre/learnhub/internal/app/models"
	"github.com/emre/learnhub/internal/app/models/dto"
	"github.com/emre/learnhub/internal/app/repositories"
	"github.com/emre/learnhub/internal/pkg/apperrors"
	"github.com/emre/learnhub/internal/pkg/dberrors"
)

// CourseService exposes course reads, instructor-gated CRUD and student
// enrollment.
type CourseService interface {
	GetAllCourses(ctx context.Context) ([]*dto.CourseResponse, error)
	GetCourseByID(ctx context.Context, id int64) (*dto.CourseResponse, error)
	GetCoursesByInstructor(ctx context.Context, instructorID int64) ([]*dto.CourseResponse, error)
	GetCoursesByStudent(ctx context.Context, studentID int64) ([]*dto.CourseResponse, error)
	SearchCoursesByTitle(ctx context.Context, title string) ([]*dto.CourseResponse, error)
	CreateCourse(ctx context.Context, instructorID int64, role models.RoleType, req *dto.CreateCourseRequest) (*dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, courseID, callerID int64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, courseID, callerID int64) error
	EnrollStudent(ctx context.Context, courseID, studentID int64, role models.RoleType) error
}

type courseServiceImpl struct {
	courseRepo     repositories.ICourseRepository
	enrollmentRepo repositories.IEnrollmentRepository
	logger         zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	logger zerolog.Logger,
) CourseService {
	return &courseServiceImpl{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// GetAllCourses retrieves all courses with instructor and student information.
func (s *courseServiceImpl) GetAllCourses(ctx context.Context) ([]*dto.CourseResponse, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}

	return s.buildResponses(ctx, courses)
}

// GetCourseByID retrieves a single course by id.
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	if err := s.populateStudents(ctx, course); err != nil {
		return nil, err
	}

	return dto.NewCourseResponse(course), nil
}

// GetCoursesByInstructor retrieves all courses owned by an instructor.
// An unknown instructor id yields an empty list, not an error.
func (s *courseServiceImpl) GetCoursesByInstructor(ctx context.Context, instructorID int64) ([]*dto.CourseResponse, error) {
	courses, err := s.courseRepo.GetByInstructorID(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses by instructor: %w", err)
	}

	return s.buildResponses(ctx, courses)
}

// GetCoursesByStudent retrieves all courses a student is enrolled in.
func (s *courseServiceImpl) GetCoursesByStudent(ctx context.Context, studentID int64) ([]*dto.CourseResponse, error) {
	courses, err := s.courseRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses by student: %w", err)
	}

	return s.buildResponses(ctx, courses)
}

// SearchCoursesByTitle retrieves courses matching the given title text.
func (s *courseServiceImpl) SearchCoursesByTitle(ctx context.Context, title string) ([]*dto.CourseResponse, error) {
	courses, err := s.courseRepo.SearchByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("error searching courses: %w", err)
	}

	return s.buildResponses(ctx, courses)
}

// CreateCourse publishes a new course owned by the calling instructor. The
// caller's identity is the ownership anchor; any instructor field in the
// request body is ignored.
func (s *courseServiceImpl) CreateCourse(ctx context.Context, instructorID int64, role models.RoleType, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if role != models.RoleInstructor {
		return nil, apperrors.NewForbiddenError("Only instructors can publish new courses")
	}

	course := &models.Course{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		InstructorID: instructorID,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("error creating course: %w", err)
	}

	s.logger.Info().
		Int64("courseID", course.ID).
		Int64("instructorID", instructorID).
		Str("title", course.Title).
		Msg("Course created")

	full, err := s.courseRepo.GetByID(ctx, course.ID)
	if err != nil || full == nil {
		// The course row exists even if the read-back failed; fall back to
		// the bare model.
		return dto.NewCourseResponse(course), nil
	}

	return dto.NewCourseResponse(full), nil
}

// UpdateCourse applies a partial update to a course after checking that the
// caller owns it.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, courseID, callerID int64, req *dto.UpdateCourseRequest) (*dto.CourseResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	if course == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	if course.InstructorID != callerID {
		return nil, apperrors.NewForbiddenError("Only the course instructor can edit this course")
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error updating course: %w", err)
	}

	s.logger.Info().
		Int64("courseID", course.ID).
		Int64("instructorID", callerID).
		Msg("Course updated")

	if err := s.populateStudents(ctx, course); err != nil {
		return nil, err
	}

	return dto.NewCourseResponse(course), nil
}

// DeleteCourse removes a course after checking that the caller owns it.
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, courseID, callerID int64) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("error retrieving course: %w", err)
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	if course.InstructorID != callerID {
		return apperrors.NewForbiddenError("Only the course instructor can delete this course")
	}

	if err := s.courseRepo.Delete(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error deleting course: %w", err)
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("instructorID", callerID).
		Msg("Course deleted")

	return nil
}

// EnrollStudent adds the calling student to a course. Instructors cannot
// enroll, and enrolling twice in the same course is a conflict.
func (s *courseServiceImpl) EnrollStudent(ctx context.Context, courseID, studentID int64, role models.RoleType) error {
	if role != models.RoleStudent {
		return apperrors.NewForbiddenError("Only students can enroll in courses")
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("error retrieving course: %w", err)
	}
	if course == nil {
		return apperrors.ErrCourseNotFound
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		return fmt.Errorf("error checking enrollment status: %w", err)
	}
	if enrolled {
		return apperrors.ErrAlreadyEnrolled
	}

	if _, err := s.enrollmentRepo.Enroll(ctx, courseID, studentID); err != nil {
		// A concurrent enroll can slip past the IsEnrolled check.
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("error enrolling student: %w", err)
	}

	s.logger.Info().
		Int64("courseID", courseID).
		Int64("studentID", studentID).
		Msg("Student enrolled in course")

	return nil
}

func (s *courseServiceImpl) populateStudents(ctx context.Context, course *models.Course) error {
	studentIDs, err := s.enrollmentRepo.GetStudentIDs(ctx, course.ID)
	if err != nil {
		return fmt.Errorf("error retrieving course students: %w", err)
	}
	course.StudentIDs = studentIDs
	return nil
}

// buildResponses maps course models to their API shape, fetching the student
// lists for all courses in one grouped query.
func (s *courseServiceImpl) buildResponses(ctx context.Context, courses []*models.Course) ([]*dto.CourseResponse, error) {
	courseIDs := make([]int64, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}

	studentsByCourse, err := s.enrollmentRepo.GetStudentIDsByCourse(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("error retrieving course students: %w", err)
	}

	responses := make([]*dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		course.StudentIDs = studentsByCourse[course.ID]
		responses = append(responses, dto.NewCourseResponse(course))
	}
	return responses, nil
}
