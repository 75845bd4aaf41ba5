package dto

import "github.com/edutrack/edutrack/internal/app/models"

// CreateCourseRequest represents course creation data. Omitted max_capacity
// and level fall back to 30 and "Beginner".
type CreateCourseRequest struct {
	CourseCode     string   `json:"course_code" binding:"required,min=3,max=50" example:"GO-101"`
	Title          string   `json:"title" binding:"required,max=255" example:"Practical Go"`
	Description    *string  `json:"description,omitempty"`
	InstructorName *string  `json:"instructor_name,omitempty" binding:"omitempty,max=255"`
	MaxCapacity    *int     `json:"max_capacity,omitempty" binding:"omitempty,min=0" example:"30"`
	DurationWeeks  *int     `json:"duration_weeks,omitempty" binding:"omitempty,min=1" example:"8"`
	Price          *float64 `json:"price,omitempty" binding:"omitempty,min=0" example:"0"`
	ImageURL       *string  `json:"image_url,omitempty" binding:"omitempty,max=500"`
	Category       *string  `json:"category,omitempty" binding:"omitempty,max=100" example:"Programming"`
	Level          *string  `json:"level,omitempty" binding:"omitempty,max=50" example:"Beginner"`
}

// ToModel converts the request into a Course
func (r CreateCourseRequest) ToModel() *models.Course {
	course := &models.Course{
		CourseCode:     r.CourseCode,
		Title:          r.Title,
		Description:    r.Description,
		InstructorName: r.InstructorName,
		DurationWeeks:  r.DurationWeeks,
		ImageURL:       r.ImageURL,
		Category:       r.Category,
	}
	if r.MaxCapacity != nil {
		course.MaxCapacity = *r.MaxCapacity
	}
	if r.Price != nil {
		course.Price = *r.Price
	}
	if r.Level != nil {
		course.Level = *r.Level
	}
	return course
}

// UpdateCourseRequest carries a partial course update; omitted fields are kept
type UpdateCourseRequest struct {
	Title          *string  `json:"title,omitempty" binding:"omitempty,max=255"`
	Description    *string  `json:"description,omitempty"`
	InstructorName *string  `json:"instructor_name,omitempty" binding:"omitempty,max=255"`
	MaxCapacity    *int     `json:"max_capacity,omitempty" binding:"omitempty,min=0"`
	DurationWeeks  *int     `json:"duration_weeks,omitempty" binding:"omitempty,min=1"`
	Price          *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
	ImageURL       *string  `json:"image_url,omitempty" binding:"omitempty,max=500"`
	Category       *string  `json:"category,omitempty" binding:"omitempty,max=100"`
	Level          *string  `json:"level,omitempty" binding:"omitempty,max=50"`
}

// ToModel converts the request into a CourseUpdate
func (r UpdateCourseRequest) ToModel() models.CourseUpdate {
	return models.CourseUpdate{
		Title:          r.Title,
		Description:    r.Description,
		InstructorName: r.InstructorName,
		MaxCapacity:    r.MaxCapacity,
		DurationWeeks:  r.DurationWeeks,
		Price:          r.Price,
		ImageURL:       r.ImageURL,
		Category:       r.Category,
		Level:          r.Level,
	}
}

// CourseListResponse is one page of courses
type CourseListResponse struct {
	Courses    []*models.Course `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}
