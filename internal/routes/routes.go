package routes

import (
	"job-board-api/internal/cache"
	"job-board-api/internal/handlers"
	"job-board-api/internal/middleware"
	"job-board-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires the router around the injected cache orchestrator. The
// orchestrator's store also backs the HTTP response cache, so both layers
// share one key space and one invalidation path.
func SetupRoutes(orch *cache.Orchestrator) *gin.Engine {
	handlers.Cache = orch
	responseCache := middleware.ResponseCache(orch.Store(), cache.TTLDefault)

	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Job Board API is running",
		})
	})

	// Prometheus metrics (cache hits/misses/errors, invalidations)
	ginRouter.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	{
		api.POST("/auth/register", handlers.Register)
		api.POST("/auth/login", handlers.Login)

		// Anonymous listing reads share one unscoped response-cache key
		// space per path+query.
		api.GET("/job-postings/public", responseCache, handlers.GetPublicJobPostings)
		api.GET("/job-postings/:id", handlers.GetJobPostingByID)
		api.GET("/profiles/:userId", handlers.GetProfile)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		recruiter := middleware.RequireRole(models.RoleRecruiter)
		candidate := middleware.RequireRole(models.RoleCandidate)

		// Job posting management (recruiter)
		protectedRoutes.GET("/job-postings/mine", recruiter, responseCache, handlers.GetMyJobPostings)
		protectedRoutes.POST("/job-postings", recruiter, handlers.CreateJobPosting)
		protectedRoutes.PUT("/job-postings/:id", recruiter, handlers.UpdateJobPosting)
		protectedRoutes.PATCH("/job-postings/:id/status", recruiter, handlers.UpdateJobPostingStatus)
		protectedRoutes.DELETE("/job-postings/:id", recruiter, handlers.DeleteJobPosting)
		protectedRoutes.GET("/job-postings/:id/applications", recruiter, handlers.GetJobApplications)

		// Applications (candidate)
		protectedRoutes.POST("/job-postings/:id/apply", candidate, handlers.ApplyToJobPosting)
		protectedRoutes.GET("/applications/mine", candidate, handlers.GetMyApplications)
		protectedRoutes.PATCH("/applications/:id/status", recruiter, handlers.UpdateApplicationStatus)

		// Profiles
		protectedRoutes.PUT("/profiles/mine", handlers.UpsertMyProfile)

		// Realtime events
		protectedRoutes.GET("/ws/events", handlers.EventsHandler)
	}

	return ginRouter
}
