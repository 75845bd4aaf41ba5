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

// StudentController handles student-related operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// CreateStudent handles student creation
// @Summary Create a student
// @Description Creates a new student profile
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student := req.ToModel()
	if err := c.studentService.CreateStudent(ctx.Request.Context(), student); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(student, "Student created successfully"))
}

// GetStudentByID retrieves a student by ID
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 403 {object} dto.ErrorResponse "Not your profile"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("student id must be a positive integer"))
		return
	}
	if !middleware.GetPrincipal(ctx).CanActFor(id) {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	student, err := c.studentService.GetStudentByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// ListStudents lists students
// @Summary List students
// @Description Lists students newest first, optionally searching name and email
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in full name or email"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse}
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	students, total, err := c.studentService.ListStudents(ctx.Request.Context(), models.StudentFilter{
		Search: ctx.Query("search"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StudentListResponse{
		Students:   students,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, ""))
}

// UpdateStudent updates a student's profile
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 403 {object} dto.ErrorResponse "Not your profile"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("student id must be a positive integer"))
		return
	}
	if !middleware.GetPrincipal(ctx).CanActFor(id) {
		middleware.HandleAPIError(ctx, apperrors.ErrPermissionDenied)
		return
	}

	var req dto.UpdateStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, "Student updated successfully"))
}

// DeleteStudent deletes a student
// @Summary Delete student
// @Description Deletes a student. Students with enrollments cannot be deleted.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student has enrollments"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("student id must be a positive integer"))
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageResponse{Message: "Student deleted successfully"}, "Student deleted successfully"))
}
