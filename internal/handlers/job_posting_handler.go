package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"job-board-api/internal/cache"
	"job-board-api/internal/database"
	"job-board-api/internal/middleware"
	"job-board-api/internal/models"
	"job-board-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateJobPostingRequest represents the request payload for creating a job posting
type CreateJobPostingRequest struct {
	Title          string                `json:"title" binding:"required"`
	Description    string                `json:"description" binding:"required"`
	Location       string                `json:"location" binding:"required"`
	EmploymentType models.EmploymentType `json:"employmentType"`
	SalaryMin      int                   `json:"salaryMin"`
	SalaryMax      int                   `json:"salaryMax"`
	Status         models.PostingStatus  `json:"status"`
}

// UpdateJobPostingRequest represents the request payload for updating a job posting
type UpdateJobPostingRequest struct {
	Title          *string                `json:"title"`
	Description    *string                `json:"description"`
	Location       *string                `json:"location"`
	EmploymentType *models.EmploymentType `json:"employmentType"`
	SalaryMin      *int                   `json:"salaryMin"`
	SalaryMax      *int                   `json:"salaryMax"`
	Status         *models.PostingStatus  `json:"status"`
}

// UpdatePostingStatusRequest represents a minimal request to change status
type UpdatePostingStatusRequest struct {
	Status models.PostingStatus `json:"status" binding:"required"`
}

// JobListPage is the cached payload of one listing page. It wraps the rows
// in an envelope so that an empty page is still a cacheable, non-nil value.
type JobListPage struct {
	Jobs  []models.JobPosting `json:"jobs"`
	Count int                 `json:"count"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func validStatus(s models.PostingStatus) bool {
	switch s {
	case models.PostingDraft, models.PostingPublished, models.PostingClosed:
		return true
	}
	return false
}

func validEmploymentType(t models.EmploymentType) bool {
	switch t {
	case models.EmploymentFullTime, models.EmploymentPartTime, models.EmploymentContract, models.EmploymentInternship:
		return true
	}
	return false
}

// queryJobPage runs one paginated listing query and wraps it in a JobListPage.
// It is the supplier behind every cached listing read, so it must stay a
// pure idempotent read: concurrent cache misses may run it redundantly.
func queryJobPage(query *gorm.DB, page, limit int) (JobListPage, error) {
	result := JobListPage{Jobs: []models.JobPosting{}, Page: page, Limit: limit}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	offset := (page - 1) * limit
	if err := query.Session(&gorm.Session{}).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&result.Jobs).Error; err != nil {
		return result, err
	}
	result.Count = len(result.Jobs)
	return result, nil
}

/*
*
GetPublicJobPostings handles GET /api/job-postings/public
Returns published postings, filterable by location, employment type and a
free-text query. The page is cached under the public listing tag, and the
HTTP-level mirror key of this exact request is tracked under the same tag so
a write invalidating the tag clears both cache layers.
*/
func GetPublicJobPostings(c *gin.Context) {
	page, limit := parsePagination(c)
	location := strings.TrimSpace(c.Query("location"))
	employmentType := strings.TrimSpace(c.Query("type"))
	search := strings.TrimSpace(c.Query("q"))

	key := cache.BuildKey("jobs", "public", "list", location, employmentType, search, page, limit)

	result, err := cache.RememberList(c.Request.Context(), Cache, TagPublicJobs, key, cache.TTLDefault,
		func(ctx context.Context) (JobListPage, error) {
			query := database.GetDB().WithContext(ctx).
				Model(&models.JobPosting{}).
				Where("status = ?", models.PostingPublished)
			if location != "" {
				query = query.Where("location = ?", location)
			}
			if employmentType != "" {
				query = query.Where("employment_type = ?", employmentType)
			}
			if search != "" {
				query = query.Where("title LIKE ?", "%"+search+"%")
			}
			return queryJobPage(query, page, limit)
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job postings"})
		return
	}

	// Register the HTTP-level mirror of this response under the same tag,
	// so Invalidate(TagPublicJobs) reaches the response cache as well.
	if err := Cache.TrackKey(c.Request.Context(), TagPublicJobs, middleware.HTTPKeyOf(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track cache key"})
		return
	}

	c.JSON(http.StatusOK, result)
}

/*
*
GetMyJobPostings handles GET /api/job-postings/mine
Returns the authenticated recruiter's own postings (any status), cached
under the recruiter's listing tag.
*/
func GetMyJobPostings(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	page, limit := parsePagination(c)
	status := strings.TrimSpace(c.Query("status"))
	tag := TagRecruiterJobs(userID)
	key := cache.BuildKey("recruiter", userID, "jobs", "list", status, page, limit)

	result, err := cache.RememberList(c.Request.Context(), Cache, tag, key, cache.TTLDefault,
		func(ctx context.Context) (JobListPage, error) {
			query := database.GetDB().WithContext(ctx).
				Model(&models.JobPosting{}).
				Where("recruiter_id = ?", userID)
			if status != "" {
				query = query.Where("status = ?", status)
			}
			return queryJobPage(query, page, limit)
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job postings"})
		return
	}

	if err := Cache.TrackKey(c.Request.Context(), tag, middleware.HTTPKeyOf(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track cache key"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetJobPostingByID handles GET /api/job-postings/:id
// Returns a single published posting through the read-through cache. A
// lookup failure (including not-found) propagates uncached, so the next
// request recomputes instead of replaying a cached error.
func GetJobPostingByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	posting, err := cache.GetOrSet(c.Request.Context(), Cache, keyJobPosting(id), cache.TTLDefault,
		func(ctx context.Context) (models.JobPosting, error) {
			var p models.JobPosting
			err := database.GetDB().WithContext(ctx).
				Where("id = ? AND status = ?", id, models.PostingPublished).
				First(&p).Error
			return p, err
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	c.JSON(http.StatusOK, posting)
}

// invalidatePostingCaches clears every cache scope a posting write touches:
// the public listing tag, the owning recruiter's tag, and the single-entry
// key of the posting itself.
func invalidatePostingCaches(ctx context.Context, recruiterID, postingID string) error {
	if err := Cache.Invalidate(ctx, TagPublicJobs); err != nil {
		return err
	}
	if err := Cache.Invalidate(ctx, TagRecruiterJobs(recruiterID)); err != nil {
		return err
	}
	return Cache.Delete(ctx, keyJobPosting(postingID))
}

/*
*
CreateJobPosting handles POST /api/job-postings
Creates a posting owned by the authenticated recruiter, then invalidates the
listing caches the new row belongs to.
*/
func CreateJobPosting(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateJobPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.PostingDraft
	}
	if !validStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	employmentType := req.EmploymentType
	if employmentType == "" {
		employmentType = models.EmploymentFullTime
	}
	if !validEmploymentType(employmentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employmentType"})
		return
	}

	if req.SalaryMin < 0 || req.SalaryMax < 0 || (req.SalaryMax > 0 && req.SalaryMin > req.SalaryMax) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salary range"})
		return
	}

	posting := models.JobPosting{
		ID:             fmt.Sprintf("job-%d", time.Now().UnixNano()),
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		EmploymentType: employmentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         status,
		RecruiterID:    userID,
	}

	if err := database.GetDB().Create(&posting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job posting"})
		return
	}

	if err := invalidatePostingCaches(c.Request.Context(), userID, posting.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	realtime.Notify(userID, "job_posting_created", map[string]any{"jobId": posting.ID})

	c.JSON(http.StatusCreated, posting)
}

// UpdateJobPosting handles PUT /api/job-postings/:id
// Updates a posting owned by the authenticated recruiter
func UpdateJobPosting(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	var existing models.JobPosting
	result := database.GetDB().Where("id = ? AND recruiter_id = ?", id, userID).First(&existing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	var req UpdateJobPostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		existing.Title = *req.Title
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Location != nil {
		existing.Location = *req.Location
	}
	if req.EmploymentType != nil {
		if !validEmploymentType(*req.EmploymentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid employmentType"})
			return
		}
		existing.EmploymentType = *req.EmploymentType
	}
	if req.SalaryMin != nil {
		existing.SalaryMin = *req.SalaryMin
	}
	if req.SalaryMax != nil {
		existing.SalaryMax = *req.SalaryMax
	}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		existing.Status = *req.Status
	}
	if existing.SalaryMin < 0 || existing.SalaryMax < 0 || (existing.SalaryMax > 0 && existing.SalaryMin > existing.SalaryMax) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid salary range"})
		return
	}

	if err := database.GetDB().Save(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job posting"})
		return
	}

	if err := invalidatePostingCaches(c.Request.Context(), userID, existing.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	realtime.Notify(userID, "job_posting_updated", map[string]any{"jobId": existing.ID})

	c.JSON(http.StatusOK, existing)
}

// UpdateJobPostingStatus handles PATCH /api/job-postings/:id/status
// Publishes or closes a posting owned by the authenticated recruiter
func UpdateJobPostingStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	var req UpdatePostingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var posting models.JobPosting
	result := database.GetDB().Where("id = ? AND recruiter_id = ?", id, userID).First(&posting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	posting.Status = req.Status
	if err := database.GetDB().Model(&posting).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	if err := invalidatePostingCaches(c.Request.Context(), userID, posting.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	c.JSON(http.StatusOK, posting)
}

// DeleteJobPosting handles DELETE /api/job-postings/:id
// Deletes a posting owned by the authenticated recruiter
func DeleteJobPosting(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job posting ID is required"})
		return
	}

	var posting models.JobPosting
	result := database.GetDB().Where("id = ? AND recruiter_id = ?", id, userID).First(&posting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job posting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job posting"})
		}
		return
	}

	if err := database.GetDB().Delete(&posting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job posting"})
		return
	}

	if err := invalidatePostingCaches(c.Request.Context(), userID, posting.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	realtime.Notify(userID, "job_posting_deleted", map[string]any{"jobId": posting.ID})

	c.JSON(http.StatusOK, gin.H{
		"message": "Job posting deleted successfully",
		"id":      posting.ID,
	})
}
