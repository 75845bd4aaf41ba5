package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/app/services"
	"github.com/edutrack/edutrack/internal/middleware"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
)

// EnrollmentController exposes enrollment admission and progress tracking
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{
		enrollmentService: enrollmentService,
	}
}

func invalidEnrollmentID(ctx *gin.Context) {
	middleware.HandleAPIError(ctx, apperrors.NewValidationError("enrollment id must be a positive integer"))
}

// Enroll enrolls a student in a course
// @Summary Enroll a student
// @Description Admits a student into a course if a seat is free. Student tokens may omit student_id.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Student and course"
// @Success 201 {object} dto.APIResponse{data=models.Enrollment} "Successfully enrolled"
// @Failure 400 {object} dto.ErrorResponse "Missing fields (VAL_001) or course full (ENR_001)"
// @Failure 403 {object} dto.ErrorResponse "Cannot enroll another student"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled (ENR_002)"
// @Failure 500 {object} dto.ErrorResponse "Storage unavailable"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx.Request.Context(), middleware.GetPrincipal(ctx), req.StudentID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(enrollment, "Successfully enrolled"))
}

// Unenroll removes an enrollment
// @Summary Unenroll
// @Description Deletes the enrollment and frees its seat
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Successfully unenrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid enrollment ID"
// @Failure 403 {object} dto.ErrorResponse "Not your enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidEnrollmentID(ctx)
		return
	}

	if err := c.enrollmentService.Unenroll(ctx.Request.Context(), middleware.GetPrincipal(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Successfully unenrolled"}, "Successfully unenrolled"))
}

// UpdateProgress updates an enrollment's progress
// @Summary Update progress
// @Description Overwrites completion status and progress. A certificate requires status Completed.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.UpdateProgressRequest true "Progress"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 400 {object} dto.ErrorResponse "Invalid progress"
// @Failure 403 {object} dto.ErrorResponse "Not your enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [put]
func (c *EnrollmentController) UpdateProgress(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidEnrollmentID(ctx)
		return
	}

	var req dto.UpdateProgressRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.UpdateProgress(ctx.Request.Context(), middleware.GetPrincipal(ctx), id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollment, "Progress updated"))
}

// GetEnrollment retrieves one enrollment
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=models.Enrollment}
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidEnrollmentID(ctx)
		return
	}

	enrollment, err := c.enrollmentService.GetEnrollment(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollment, ""))
}

// ListEnrollments lists enrollments with student and course details
// @Summary List enrollments
// @Description Newest first. Student tokens only see their own enrollments.
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param student_id query int false "Filter by student"
// @Param course_id query int false "Filter by course"
// @Success 200 {object} dto.APIResponse{data=[]models.EnrollmentDetail}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Storage unavailable"
// @Router /enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	studentID, ok := helpers.ParseOptionalIDQuery(ctx, "student_id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("student_id must be a positive integer"))
		return
	}
	courseID, ok := helpers.ParseOptionalIDQuery(ctx, "course_id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("course_id must be a positive integer"))
		return
	}

	enrollments, err := c.enrollmentService.ListEnrollments(ctx.Request.Context(), middleware.GetPrincipal(ctx), models.EnrollmentFilter{
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(enrollments, ""))
}

// ReconcileEnrolledCount recomputes a course's enrolled_count
// @Summary Reconcile enrolled count
// @Description Recounts the course's enrollments and corrects enrolled_count
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "More enrollments than capacity"
// @Router /courses/{id}/reconcile [post]
func (c *EnrollmentController) ReconcileEnrolledCount(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidCourseID(ctx)
		return
	}

	course, err := c.enrollmentService.ReconcileEnrolledCount(ctx.Request.Context(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Enrolled count reconciled"))
}
