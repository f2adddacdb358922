package handlers

import (
	"context"
	"errors"
	"net/http"

	"job-board-api/internal/cache"
	"job-board-api/internal/database"
	"job-board-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpsertProfileRequest represents the request payload for saving a profile
type UpsertProfileRequest struct {
	Headline        string `json:"headline" binding:"required"`
	Summary         string `json:"summary"`
	Skills          string `json:"skills"`
	YearsExperience int    `json:"yearsExperience"`
}

// GetProfile handles GET /api/profiles/:userId
// Returns a candidate profile through the read-through cache.
func GetProfile(c *gin.Context) {
	targetID := c.Param("userId")
	if targetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	profile, err := cache.GetOrSet(c.Request.Context(), Cache, keyProfile(targetID), cache.TTLDefault,
		func(ctx context.Context) (models.CandidateProfile, error) {
			var p models.CandidateProfile
			err := database.GetDB().WithContext(ctx).Where("user_id = ?", targetID).First(&p).Error
			return p, err
		})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertMyProfile handles PUT /api/profiles/mine
// Creates or updates the authenticated user's profile and evicts its single
// cached entry. No tag is involved: one key, one known invalidation.
func UpsertMyProfile(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.YearsExperience < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "yearsExperience must not be negative"})
		return
	}

	profile := models.CandidateProfile{
		UserID:          userID,
		Headline:        req.Headline,
		Summary:         req.Summary,
		Skills:          req.Skills,
		YearsExperience: req.YearsExperience,
	}

	var existing models.CandidateProfile
	err := database.GetDB().Where("user_id = ?", userID).First(&existing).Error
	switch {
	case err == nil:
		if err := database.GetDB().Model(&existing).Updates(map[string]any{
			"headline":         profile.Headline,
			"summary":          profile.Summary,
			"skills":           profile.Skills,
			"years_experience": profile.YearsExperience,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := database.GetDB().Create(&profile).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch profile"})
		return
	}

	if err := Cache.Delete(c.Request.Context(), keyProfile(userID)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
