package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/emre/learnhub/internal/app/controllers"
	"github.com/emre/learnhub/internal/app/models"
	"github.com/emre/learnhub/internal/app/models/dto"
	"github.com/emre/learnhub/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	courseController *controllers.CourseController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	// --- Public user routes ---
	user := api.Group("/user")
	{
		user.POST("/register", authController.Register)
		user.POST("/login", authController.Login)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/user/profile", authController.GetProfile)

		courses := authenticated.Group("/courses")
		{
			// Read routes accessible to any authenticated user
			courses.GET("", courseController.GetAllCourses)
			courses.GET("/:id", courseController.GetCourseByID)
			courses.GET("/instructor/:id", courseController.GetCoursesByInstructor)
			courses.GET("/student/:id", courseController.GetCoursesByStudent)
			courses.GET("/findByName/:name", courseController.SearchCoursesByName)

			// Owner checks live in the service layer; the role gate is here
			coursesInstructorProtected := courses.Group("")
			coursesInstructorProtected.Use(authMiddleware.RoleRequired(models.RoleInstructor))
			{
				coursesInstructorProtected.POST("", courseController.CreateCourse)
				coursesInstructorProtected.PATCH("/:id", courseController.UpdateCourse)
				coursesInstructorProtected.DELETE("/:id", courseController.DeleteCourse)
			}

			coursesStudentProtected := courses.Group("")
			coursesStudentProtected.Use(authMiddleware.RoleRequired(models.RoleStudent))
			{
				coursesStudentProtected.POST("/enroll/:id", courseController.EnrollInCourse)
			}
		}
	}

	// Health check endpoint (public)
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Success: true,
			Data:    gin.H{"status": "ok"},
		})
	})
}
