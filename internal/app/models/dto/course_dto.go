package dto

import (
	"time"

	"github.com/emre/learnhub/internal/app/models"
)

// CreateCourseRequest represents the payload for publishing a new course.
// The instructor is always taken from the authenticated caller, never from
// the request body.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=100"`
	Description string `json:"description" binding:"required,max=1000"`
	Price       int64  `json:"price" binding:"gte=0"`
}

// UpdateCourseRequest represents a partial course update. Absent fields keep
// their stored values.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=1000"`
	Price       *int64  `json:"price,omitempty" binding:"omitempty,gte=0"`
}

// CourseInstructor is the instructor projection joined into course reads.
type CourseInstructor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CourseResponse represents course information returned by the API
type CourseResponse struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	Instructor  *CourseInstructor `json:"instructor,omitempty"`
	Students    []int64           `json:"students"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewCourseResponse maps a course model (with populated relations) to its API shape.
func NewCourseResponse(course *models.Course) *CourseResponse {
	resp := &CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Price:       course.Price,
		Students:    course.StudentIDs,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
	if resp.Students == nil {
		resp.Students = []int64{}
	}
	if course.Instructor != nil {
		resp.Instructor = &CourseInstructor{
			ID:       course.Instructor.ID,
			Username: course.Instructor.Username,
			Email:    course.Instructor.Email,
		}
	}
	return resp
}
