package models

import (
	"gorm.io/gorm"
)

// ApplicationStatus represents the review status of an application
type ApplicationStatus string

const (
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationReviewed  ApplicationStatus = "reviewed"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationAccepted  ApplicationStatus = "accepted"
)

// Application represents a candidate's application to a job posting
type Application struct {
	ID          string            `json:"id" gorm:"primaryKey"`
	JobID       string            `json:"jobId" gorm:"column:job_id;index;not null"`
	CandidateID string            `json:"candidateId" gorm:"column:candidate_id;index;not null"`
	Status      ApplicationStatus `json:"status" gorm:"not null;default:'submitted'"`
	Note        string            `json:"note"`
	gorm.Model
}

// TableName specifies the table name for Application Model
func (Application) TableName() string {
	return "applications"
}
