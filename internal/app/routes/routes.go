package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/controllers"
	"github.com/edutrack/edutrack/internal/middleware"
	"github.com/edutrack/edutrack/internal/pkg/metrics"
	"github.com/edutrack/edutrack/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Student     *controllers.StudentController
	Course      *controllers.CourseController
	CourseImage *controllers.CourseImageController
	Enrollment  *controllers.EnrollmentController
	Health      *controllers.HealthController
	Seats       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, principal *middleware.PrincipalMiddleware) {
	router.GET("/health", c.Health.Health)
	router.GET("/metrics", metrics.PrometheusHandler())

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public catalog routes ---
	catalog := v1.Group("/courses")
	{
		catalog.GET("", c.Course.ListCourses)
		catalog.GET("/:id", c.Course.GetCourseByID)
		catalog.GET("/:id/seats/ws", c.Seats.WatchSeats)
	}

	// --- Principal-aware routes ---
	authenticated := v1.Group("")
	authenticated.Use(principal.Authenticate())

	enrollments := authenticated.Group("/enrollments")
	{
		enrollments.POST("", c.Enrollment.Enroll)
		enrollments.GET("", c.Enrollment.ListEnrollments)
		enrollments.GET("/:id", c.Enrollment.GetEnrollment)
		enrollments.PUT("/:id", c.Enrollment.UpdateProgress)
		enrollments.DELETE("/:id", c.Enrollment.Unenroll)
	}

	// Students may read and edit their own profile
	students := authenticated.Group("/students")
	{
		students.GET("/:id", c.Student.GetStudentByID)
		students.PUT("/:id", c.Student.UpdateStudent)
	}

	// --- Admin routes ---
	adminStudents := students.Group("")
	adminStudents.Use(principal.RequireAdmin())
	{
		adminStudents.POST("", c.Student.CreateStudent)
		adminStudents.GET("", c.Student.ListStudents)
		adminStudents.DELETE("/:id", c.Student.DeleteStudent)
	}

	adminCourses := authenticated.Group("/courses")
	adminCourses.Use(principal.RequireAdmin())
	{
		adminCourses.POST("", c.Course.CreateCourse)
		adminCourses.PUT("/:id", c.Course.UpdateCourse)
		adminCourses.DELETE("/:id", c.Course.DeleteCourse)
		adminCourses.POST("/:id/reconcile", c.Enrollment.ReconcileEnrolledCount)
		adminCourses.POST("/:id/image", c.CourseImage.UploadImage)
	}
}
