package models

import (
	"gorm.io/gorm"
)

// PostingStatus represents the lifecycle status of a job posting
type PostingStatus string

const (
	PostingDraft     PostingStatus = "draft"
	PostingPublished PostingStatus = "published"
	PostingClosed    PostingStatus = "closed"
)

// EmploymentType represents the engagement type of a job posting
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "fullTime"
	EmploymentPartTime   EmploymentType = "partTime"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

// JobPosting represents a job posting in the system
type JobPosting struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	Title          string         `json:"title" gorm:"not null"`
	Description    string         `json:"description"`
	Location       string         `json:"location" gorm:"index"`
	EmploymentType EmploymentType `json:"employmentType" gorm:"column:employment_type;default:'fullTime'"`
	SalaryMin      int            `json:"salaryMin" gorm:"column:salary_min"`
	SalaryMax      int            `json:"salaryMax" gorm:"column:salary_max"`
	Status         PostingStatus  `json:"status" gorm:"not null;default:'draft'"`
	RecruiterID    string         `json:"recruiterId" gorm:"column:recruiter_id;index"`
	gorm.Model
}

// TableName specifies the table name for JobPosting Model
func (JobPosting) TableName() string {
	return "job_postings"
}
