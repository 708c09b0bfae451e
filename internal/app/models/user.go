package models

import (
	"time"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent    RoleType = "student"
	RoleInstructor RoleType = "instructor"
)

// IsValid reports whether the role is one of the known roles.
func (r RoleType) IsValid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // hashed password, excluded from JSON
	Role      RoleType  `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsStudent reports whether the user has the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsInstructor reports whether the user has the instructor role.
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}
