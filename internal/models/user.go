package models

import (
	"gorm.io/gorm"
)

// UserRole distinguishes recruiters (who manage postings) from candidates
// (who apply to them)
type UserRole string

const (
	RoleRecruiter UserRole = "recruiter"
	RoleCandidate UserRole = "candidate"
)

// User represents a user in the system
type User struct {
	ID       string   `json:"id" gorm:"primaryKey"`
	Username string   `json:"username" gorm:"unique;not null"`
	Password string   `json:"-" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"not null;default:'candidate'"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}
