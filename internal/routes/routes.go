package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"meca_backend/internal/handlers"
	"meca_backend/internal/middleware"
	"meca_backend/internal/models"
)

// SetupRoutes mounts the full HTTP surface. Three tiers: public, member
// (any authenticated user) and admin.
func SetupRoutes(r *gin.Engine, h *handlers.AppHandlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.MetricsHandler())

	api := r.Group("/api/v1")

	// --- Public ---
	api.POST("/references/verify", h.VerificationHandler.Verify)
	api.GET("/directory/judges", h.PersonnelHandler.JudgeDirectory)
	api.GET("/directory/event-directors", h.PersonnelHandler.EventDirectorDirectory)

	// --- Member ---
	member := api.Group("")
	member.Use(middleware.AuthMiddleware())
	{
		member.POST("/applications/:role_type", h.ApplicationHandler.Submit)
		member.GET("/applications/:role_type/my", h.ApplicationHandler.GetOwn)

		member.POST("/assignments/:id/respond", h.AssignmentHandler.Respond)
		member.GET("/assignments/my", h.AssignmentHandler.ListOwn)

		member.POST("/ratings", h.RatingHandler.Create)
		member.GET("/ratings/my", h.RatingHandler.ListOwn)
		member.DELETE("/ratings/:id", h.RatingHandler.Delete)
		member.GET("/events/:id/rateable", h.RatingHandler.RateableEntities)
	}

	// --- Admin ---
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin))
	{
		admin.GET("/applications", h.ApplicationHandler.List)
		admin.GET("/applications/:id", h.ApplicationHandler.Get)
		admin.POST("/applications/:id/review", h.ApplicationHandler.Review)
		admin.POST("/applications/quick", h.ApplicationHandler.QuickCreate)

		admin.POST("/personnel", h.ApplicationHandler.DirectCreate)
		admin.GET("/personnel", h.PersonnelHandler.List)
		admin.GET("/personnel/:id", h.PersonnelHandler.Get)
		admin.PATCH("/personnel/:id", h.PersonnelHandler.Update)
		admin.POST("/personnel/:id/level", h.PersonnelHandler.ChangeLevel)
		admin.GET("/personnel/:id/level-history", h.PersonnelHandler.LevelHistory)

		admin.POST("/assignments", h.AssignmentHandler.Create)
		admin.GET("/assignments", h.AssignmentHandler.List)
		admin.GET("/assignments/:id", h.AssignmentHandler.Get)
		admin.PATCH("/assignments/:id", h.AssignmentHandler.Update)
		admin.DELETE("/assignments/:id", h.AssignmentHandler.Delete)
		admin.GET("/events/:id/assignments", h.AssignmentHandler.ListByEvent)

		admin.GET("/ratings", h.RatingHandler.ListAll)
		admin.DELETE("/ratings/:id", h.RatingHandler.Delete)
		admin.GET("/ratings/analytics", h.RatingHandler.Analytics)
	}
}
