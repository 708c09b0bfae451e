package services_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/emre/learnhub/internal/app/models"
	"github.com/emre/learnhub/internal/app/models/dto"
	"github.com/emre/learnhub/internal/app/repositories"
	"github.com/emre/learnhub/internal/app/services"
	"github.com/emre/learnhub/internal/pkg/apperrors"
)

// fakeEnrollmentRepo is an in-memory IEnrollmentRepository. byCourseCalls
// counts grouped student lookups so tests can check query batching.
type fakeEnrollmentRepo struct {
	enrollments   []models.Enrollment
	nextID        int64
	byCourseCalls int
}

func (r *fakeEnrollmentRepo) Enroll(_ context.Context, courseID, userID int64) (int64, error) {
	r.nextID++
	r.enrollments = append(r.enrollments, models.Enrollment{
		ID:         r.nextID,
		CourseID:   courseID,
		UserID:     userID,
		EnrolledAt: time.Now(),
	})
	return r.nextID, nil
}

func (r *fakeEnrollmentRepo) IsEnrolled(_ context.Context, courseID, userID int64) (bool, error) {
	for _, e := range r.enrollments {
		if e.CourseID == courseID && e.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) GetStudentIDsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]int64, error) {
	r.byCourseCalls++
	out := make(map[int64][]int64, len(courseIDs))
	for _, courseID := range courseIDs {
		ids, _ := r.GetStudentIDs(ctx, courseID)
		if len(ids) > 0 {
			out[courseID] = ids
		}
	}
	return out, nil
}

func (r *fakeEnrollmentRepo) GetStudentIDs(_ context.Context, courseID int64) ([]int64, error) {
	ids := make([]int64, 0)
	for _, e := range r.enrollments {
		if e.CourseID == courseID {
			ids = append(ids, e.UserID)
		}
	}
	return ids, nil
}

// fakeCourseRepo is an in-memory ICourseRepository sharing enrollment state
// with a fakeEnrollmentRepo for the student-centric queries.
type fakeCourseRepo struct {
	courses     map[int64]*models.Course
	enrollments *fakeEnrollmentRepo
	nextID      int64
}

func newFakeCourseRepo(enrollments *fakeEnrollmentRepo) *fakeCourseRepo {
	return &fakeCourseRepo{
		courses:     make(map[int64]*models.Course),
		enrollments: enrollments,
	}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.nextID++
	course.ID = r.nextID
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	stored := *course
	r.courses[course.ID] = &stored
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	copy := *course
	return &copy, nil
}

func (r *fakeCourseRepo) GetAll(_ context.Context) ([]*models.Course, error) {
	return r.list(func(*models.Course) bool { return true }), nil
}

func (r *fakeCourseRepo) GetByInstructorID(_ context.Context, instructorID int64) ([]*models.Course, error) {
	return r.list(func(c *models.Course) bool { return c.InstructorID == instructorID }), nil
}

func (r *fakeCourseRepo) GetByStudentID(ctx context.Context, studentID int64) ([]*models.Course, error) {
	return r.list(func(c *models.Course) bool {
		enrolled, _ := r.enrollments.IsEnrolled(ctx, c.ID, studentID)
		return enrolled
	}), nil
}

func (r *fakeCourseRepo) SearchByTitle(_ context.Context, title string) ([]*models.Course, error) {
	return r.list(func(c *models.Course) bool { return c.Title == title }), nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	stored, ok := r.courses[course.ID]
	if !ok {
		return repositories.ErrCourseNotFound
	}
	stored.Title = course.Title
	stored.Description = course.Description
	stored.Price = course.Price
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) list(keep func(*models.Course) bool) []*models.Course {
	out := make([]*models.Course, 0)
	for _, course := range r.courses {
		if keep(course) {
			copy := *course
			out = append(out, &copy)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type courseFixture struct {
	svc         services.CourseService
	courses     *fakeCourseRepo
	enrollments *fakeEnrollmentRepo
}

func newCourseFixture() *courseFixture {
	enrollments := &fakeEnrollmentRepo{}
	courses := newFakeCourseRepo(enrollments)
	return &courseFixture{
		svc:         services.NewCourseService(courses, enrollments, zerolog.Nop()),
		courses:     courses,
		enrollments: enrollments,
	}
}

func (f *courseFixture) createCourse(t *testing.T, instructorID int64, title string) *dto.CourseResponse {
	t.Helper()
	course, err := f.svc.CreateCourse(context.Background(), instructorID, models.RoleInstructor, &dto.CreateCourseRequest{
		Title:       title,
		Description: "A course about " + title,
		Price:       4900,
	})
	require.NoError(t, err)
	return course
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestCreateCourse_OwnedByCaller(t *testing.T) {
	f := newCourseFixture()

	course := f.createCourse(t, 7, "Go Basics")
	assert.NotZero(t, course.ID)
	assert.Equal(t, "Go Basics", course.Title)
	assert.Equal(t, []int64{}, course.Students)

	stored, err := f.courses.GetByID(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stored.InstructorID)
}

func TestCreateCourse_StudentForbidden(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.CreateCourse(context.Background(), 7, models.RoleStudent, &dto.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "Not allowed",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, f.courses.courses)
}

func TestGetCourseByID_NotFound(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.GetCourseByID(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestGetAllCourses_Empty(t *testing.T) {
	f := newCourseFixture()

	courses, err := f.svc.GetAllCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NotNil(t, courses)
}

func TestUpdateCourse_PartialMerge(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	updated, err := f.svc.UpdateCourse(context.Background(), created.ID, 7, &dto.UpdateCourseRequest{
		Price: intPtr(5900),
	})
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, int64(5900), updated.Price)
}

func TestUpdateCourse_Idempotent(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	req := &dto.UpdateCourseRequest{Title: strPtr("Advanced Go"), Price: intPtr(9900)}

	first, err := f.svc.UpdateCourse(context.Background(), created.ID, 7, req)
	require.NoError(t, err)
	second, err := f.svc.UpdateCourse(context.Background(), created.ID, 7, req)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Description, second.Description)
	assert.Equal(t, first.Price, second.Price)
}

func TestUpdateCourse_NonOwnerForbidden(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	_, err := f.svc.UpdateCourse(context.Background(), created.ID, 8, &dto.UpdateCourseRequest{
		Title: strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// The course is untouched
	stored, getErr := f.courses.GetByID(context.Background(), created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Go Basics", stored.Title)
	assert.Equal(t, int64(7), stored.InstructorID)
}

func TestUpdateCourse_NotFound(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.UpdateCourse(context.Background(), 999, 7, &dto.UpdateCourseRequest{
		Title: strPtr("Ghost"),
	})
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestDeleteCourse(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	// Non-owner cannot delete
	err := f.svc.DeleteCourse(context.Background(), created.ID, 8)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Owner can
	err = f.svc.DeleteCourse(context.Background(), created.ID, 7)
	require.NoError(t, err)

	_, err = f.svc.GetCourseByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	// Deleting again reports not found
	err = f.svc.DeleteCourse(context.Background(), created.ID, 7)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestEnrollStudent(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	err := f.svc.EnrollStudent(context.Background(), created.ID, 21, models.RoleStudent)
	require.NoError(t, err)

	course, err := f.svc.GetCourseByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{21}, course.Students)
}

func TestEnrollStudent_InstructorForbidden(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	err := f.svc.EnrollStudent(context.Background(), created.ID, 7, models.RoleInstructor)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestEnrollStudent_CourseNotFound(t *testing.T) {
	f := newCourseFixture()

	err := f.svc.EnrollStudent(context.Background(), 999, 21, models.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestEnrollStudent_Duplicate(t *testing.T) {
	f := newCourseFixture()
	created := f.createCourse(t, 7, "Go Basics")

	require.NoError(t, f.svc.EnrollStudent(context.Background(), created.ID, 21, models.RoleStudent))

	err := f.svc.EnrollStudent(context.Background(), created.ID, 21, models.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	// Only one enrollment row exists
	ids, idsErr := f.enrollments.GetStudentIDs(context.Background(), created.ID)
	require.NoError(t, idsErr)
	assert.Equal(t, []int64{21}, ids)
}

// Listing many courses fetches all student lists through a single grouped
// lookup instead of one query per course.
func TestGetAllCourses_BatchedStudentLookup(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	courseA := f.createCourse(t, 1, "Go Basics")
	courseB := f.createCourse(t, 1, "Advanced Go")
	f.createCourse(t, 2, "PostgreSQL Deep Dive")

	require.NoError(t, f.svc.EnrollStudent(ctx, courseA.ID, 30, models.RoleStudent))
	require.NoError(t, f.svc.EnrollStudent(ctx, courseA.ID, 31, models.RoleStudent))
	require.NoError(t, f.svc.EnrollStudent(ctx, courseB.ID, 31, models.RoleStudent))

	f.enrollments.byCourseCalls = 0
	all, err := f.svc.GetAllCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, f.enrollments.byCourseCalls)

	// Each course carries its own student list
	byID := make(map[int64]*dto.CourseResponse, len(all))
	for _, course := range all {
		byID[course.ID] = course
	}
	assert.Equal(t, []int64{30, 31}, byID[courseA.ID].Students)
	assert.Equal(t, []int64{31}, byID[courseB.ID].Students)
}

// Two instructors with their own courses plus one enrolled student, checked
// through the listing endpoints.
func TestCourseListings(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	courseA := f.createCourse(t, 1, "Go Basics")
	courseB := f.createCourse(t, 2, "PostgreSQL Deep Dive")

	require.NoError(t, f.svc.EnrollStudent(ctx, courseA.ID, 30, models.RoleStudent))

	all, err := f.svc.GetAllCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byInstructor, err := f.svc.GetCoursesByInstructor(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byInstructor, 1)
	assert.Equal(t, courseA.ID, byInstructor[0].ID)

	byStudent, err := f.svc.GetCoursesByStudent(ctx, 30)
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	assert.Equal(t, courseA.ID, byStudent[0].ID)
	assert.Equal(t, []int64{30}, byStudent[0].Students)

	// Unknown ids yield empty lists, not errors
	none, err := f.svc.GetCoursesByInstructor(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)

	found, err := f.svc.SearchCoursesByTitle(ctx, "PostgreSQL Deep Dive")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, courseB.ID, found[0].ID)
}
