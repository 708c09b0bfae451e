package models

import (
	"time"
)

// Course represents a course published by an instructor.
// InstructorID is the ownership anchor: it is set from the creator's identity
// and never changes afterwards.
type Course struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Price        int64     `json:"price" db:"price"`
	InstructorID int64     `json:"instructorId" db:"instructor_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// Relations (populated when needed)
	Instructor *User   `json:"instructor,omitempty"`
	StudentIDs []int64 `json:"students,omitempty"`
}

// Enrollment links a student to a course. The (course, user) pair is unique,
// and a course's student list is the enrollments ordered by EnrolledAt.
type Enrollment struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`
}
