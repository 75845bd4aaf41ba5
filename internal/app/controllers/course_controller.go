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

// CourseController handles the course catalog
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{
		courseService: courseService,
	}
}

func invalidCourseID(ctx *gin.Context) {
	middleware.HandleAPIError(ctx, apperrors.NewValidationError("course id must be a positive integer"))
}

// CreateCourse handles course creation
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := req.ToModel()
	if err := c.courseService.CreateCourse(ctx.Request.Context(), course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course, "Course created successfully"))
}

// GetCourseByID retrieves a course by ID
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidCourseID(ctx)
		return
	}

	course, err := c.courseService.GetCourseByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, ""))
}

// ListCourses lists the catalog
// @Summary List courses
// @Description Lists courses newest first with optional filters
// @Tags courses
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Level"
// @Param search query string false "Search in title or course code"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	courses, total, err := c.courseService.ListCourses(ctx.Request.Context(), models.CourseFilter{
		Category: ctx.Query("category"),
		Level:    ctx.Query("level"),
		Search:   ctx.Query("search"),
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CourseListResponse{
		Courses:    courses,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, ""))
}

// UpdateCourse applies a partial update
// @Summary Update course
// @Description Updates the given fields. max_capacity cannot drop below enrolled_count.
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidCourseID(ctx)
		return
	}

	var req dto.UpdateCourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course updated successfully"))
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Description Deletes a course. Courses with enrollments cannot be deleted.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Failure 409 {object} dto.ErrorResponse "Course has enrollments"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidCourseID(ctx)
		return
	}

	if err := c.courseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Course deleted successfully"}, "Course deleted successfully"))
}
