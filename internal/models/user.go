package models

import "time"

// User represents an account that can own documents and participate in assignments.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:'student'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleStudent can create documents and submit them to assignments.
	RoleStudent = "student"
	// RoleTeacher can create assignments and evaluate submissions.
	RoleTeacher = "teacher"
	// RoleAdmin has every teacher capability plus account administration.
	RoleAdmin = "admin"
)

// CanEvaluate reports whether the user holds a role allowed to grade submissions.
func (u User) CanEvaluate() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
