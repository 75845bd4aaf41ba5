package controllers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/app/services"
	"github.com/edutrack/edutrack/internal/middleware"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/filestorage"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

// MaxCourseImageSize is the largest accepted course image
const MaxCourseImageSize = 5 << 20

var courseImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// CourseImageController stores course cover images
type CourseImageController struct {
	courseService services.CourseService
	storage       filestorage.FileStorage
}

// NewCourseImageController creates a new CourseImageController
func NewCourseImageController(courseService services.CourseService, storage filestorage.FileStorage) *CourseImageController {
	return &CourseImageController{
		courseService: courseService,
		storage:       storage,
	}
}

// UploadImage replaces a course's cover image
// @Summary Upload course image
// @Description Stores a JPEG, PNG or WebP image (max 5 MB) and sets it as the course's image_url
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param image formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=models.Course}
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid image"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/image [post]
func (c *CourseImageController) UploadImage(ctx *gin.Context) {
	id, ok := helpers.ParseIDParam(ctx, "id")
	if !ok {
		invalidCourseID(ctx)
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image file is required"))
		return
	}
	if file.Size > MaxCourseImageSize {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image must be at most 5 MB"))
		return
	}
	if !courseImageExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("image must be a .jpg, .jpeg, .png or .webp file"))
		return
	}

	existing, err := c.courseService.GetCourseByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	url, err := c.storage.SaveFileWithPath(file, "courses")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.courseService.UpdateCourse(ctx.Request.Context(), id, models.CourseUpdate{ImageURL: &url})
	if err != nil {
		if delErr := c.storage.DeleteFile(url); delErr != nil {
			logger.Warn().Err(delErr).Str("url", url).Msg("Failed to remove orphaned course image")
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	if existing.ImageURL != nil && c.storage.Owns(*existing.ImageURL) {
		if err := c.storage.DeleteFile(*existing.ImageURL); err != nil {
			logger.Warn().Err(err).Str("url", *existing.ImageURL).Msg("Failed to remove replaced course image")
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course, "Course image updated"))
}
