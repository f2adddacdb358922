package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"job-board-api/internal/cache"
	"job-board-api/internal/database"
	"job-board-api/internal/models"
	"job-board-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplyRequest represents the request payload for applying to a posting
type ApplyRequest struct {
	Note string `json:"note"`
}

// UpdateApplicationStatusRequest represents a minimal request to change an
// application's review status
type UpdateApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

// ApplicationListPage is the cached payload of one application listing page.
type ApplicationListPage struct {
	Applications []models.Application `json:"applications"`
	Count        int                  `json:"count"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	Limit        int                  `json:"limit"`
}

func validApplicationStatus(s models.ApplicationStatus) bool {
	switch s {
	case models.ApplicationSubmitted, models.ApplicationReviewed, models.ApplicationRejected, models.ApplicationAccepted:
		return true
	}
	return false
}

func queryApplicationPage(query *gorm.DB, page, limit int) (ApplicationListPage, error) {
	result := ApplicationListPage{Applications: []models.Application{}, Page: page, Limit: limit}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	offset := (page - 1) * limit
	if err := query.Session(&gorm.Session{}).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&result.Applications).Error; err != nil {
		return result, err
	}
	result.Count = len(result.Applications)
	return result, nil
}

/*
*
ApplyToJobPosting handles POST /api/job-postings/:id/apply
Creates an application by the authenticated candidate, then invalidates the
application listings of both the posting and the candidate.
*/
func ApplyToJobPosting(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	jobID := c.Param("id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var posting models.JobPosting
	result := database.GetDB().Where("id = ? AND status = ?", jobID, models.PostingPublished).First(&posting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	var count int64
	if err := database.GetDB().Model(&models.Application{}).
		Where("job_id = ? AND candidate_id = ?", jobID, userID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing application"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Already applied to this job posting"})
		return
	}

	application := models.Application{
		ID:          fmt.Sprintf("app-%d", time.Now().UnixNano()),
		JobID:       jobID,
		CandidateID: userID,
		Status:      models.ApplicationSubmitted,
		Note:        req.Note,
	}
	if err := database.GetDB().Create(&application).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		return
	}

	ctx := c.Request.Context()
	if err := Cache.Invalidate(ctx, TagJobApplications(jobID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}
	if err := Cache.Invalidate(ctx, TagCandidateApplications(userID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	realtime.Notify(posting.RecruiterID, "application_received", map[string]any{
		"jobId":         jobID,
		"applicationId": application.ID,
	})

	c.JSON(http.StatusCreated, application)
}

/*
*
GetJobApplications handles GET /api/job-postings/:id/applications
Returns the applications to one posting, visible only to the recruiter who
owns it, cached under the posting's application tag.
*/
func GetJobApplications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	jobID := c.Param("id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	// Ownership check happens outside the cached supplier so one recruiter's
	// page can never be replayed to another caller.
	var posting models.JobPosting
	result := database.GetDB().Where("id = ? AND recruiter_id = ?", jobID, userID).First(&posting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	page, limit := parsePagination(c)
	tag := TagJobApplications(jobID)
	key := cache.BuildKey("job", jobID, "applications", "list", page, limit)

	resultPage, err := cache.RememberList(c.Request.Context(), Cache, tag, key, cache.TTLDefault,
		func(ctx context.Context) (ApplicationListPage, error) {
			query := database.GetDB().WithContext(ctx).
				Model(&models.Application{}).
				Where("job_id = ?", jobID)
			return queryApplicationPage(query, page, limit)
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, resultPage)
}

/*
*
GetMyApplications handles GET /api/applications/mine
Returns the authenticated candidate's applications, cached under the
candidate's application tag.
*/
func GetMyApplications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	page, limit := parsePagination(c)
	tag := TagCandidateApplications(userID)
	key := cache.BuildKey("candidate", userID, "applications", "list", page, limit)

	resultPage, err := cache.RememberList(c.Request.Context(), Cache, tag, key, cache.TTLDefault,
		func(ctx context.Context) (ApplicationListPage, error) {
			query := database.GetDB().WithContext(ctx).
				Model(&models.Application{}).
				Where("candidate_id = ?", userID)
			return queryApplicationPage(query, page, limit)
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, resultPage)
}

// UpdateApplicationStatus handles PATCH /api/applications/:id/status
// Moves an application through review; only the recruiter owning the posting
// may do this. Both affected application listings are invalidated.
func UpdateApplicationStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	appID := c.Param("id")
	if appID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Application ID is required"})
		return
	}

	var req UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validApplicationStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var application models.Application
	result := database.GetDB().Where("id = ?", appID).First(&application)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch application"})
		}
		return
	}

	var posting models.JobPosting
	if err := database.GetDB().Where("id = ? AND recruiter_id = ?", application.JobID, userID).First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not the owner of this job posting"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	application.Status = req.Status
	if err := database.GetDB().Model(&application).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	ctx := c.Request.Context()
	if err := Cache.Invalidate(ctx, TagJobApplications(application.JobID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}
	if err := Cache.Invalidate(ctx, TagCandidateApplications(application.CandidateID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	realtime.Notify(application.CandidateID, "application_status_changed", map[string]any{
		"applicationId": application.ID,
		"status":        application.Status,
	})

	c.JSON(http.StatusOK, application)
}
