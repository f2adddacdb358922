package models

import (
	"gorm.io/gorm"
)

// CandidateProfile represents a candidate's public profile
type CandidateProfile struct {
	UserID          string `json:"userId" gorm:"column:user_id;primaryKey"`
	Headline        string `json:"headline"`
	Summary         string `json:"summary"`
	Skills          string `json:"skills"` // comma-separated list
	YearsExperience int    `json:"yearsExperience" gorm:"column:years_experience;default:0"`
	gorm.Model
}

// TableName specifies the table name for CandidateProfile Model
func (CandidateProfile) TableName() string {
	return "candidate_profiles"
}
