package dto

import "github.com/edutrack/edutrack/internal/app/models"

// CreateStudentRequest represents student creation data
type CreateStudentRequest struct {
	Email           string  `json:"email" binding:"required,email,max=255" example:"ada@example.com"`
	FullName        string  `json:"full_name" binding:"required,min=2,max=255" example:"Ada Lovelace"`
	Phone           *string `json:"phone,omitempty" binding:"omitempty,max=20" example:"+44 20 7946 0000"`
	Bio             *string `json:"bio,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" binding:"omitempty,max=500"`
}

// ToModel converts the request into a Student
func (r CreateStudentRequest) ToModel() *models.Student {
	return &models.Student{
		Email:           r.Email,
		FullName:        r.FullName,
		Phone:           r.Phone,
		Bio:             r.Bio,
		ProfileImageURL: r.ProfileImageURL,
	}
}

// UpdateStudentRequest represents the editable profile fields. Omitted
// fields are left unchanged; "" clears an optional field.
type UpdateStudentRequest struct {
	FullName        *string `json:"full_name,omitempty" binding:"omitempty,min=2,max=255" example:"Ada King"`
	Phone           *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Bio             *string `json:"bio,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty" binding:"omitempty,max=500"`
}

// ToModel converts the request into a partial update
func (r UpdateStudentRequest) ToModel() models.StudentUpdate {
	return models.StudentUpdate{
		FullName:        r.FullName,
		Phone:           r.Phone,
		Bio:             r.Bio,
		ProfileImageURL: r.ProfileImageURL,
	}
}

// StudentListResponse is one page of students
type StudentListResponse struct {
	Students   []*models.Student `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}
