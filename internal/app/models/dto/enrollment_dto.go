package dto

import "github.com/edutrack/edutrack/internal/app/models"

// EnrollRequest asks to enroll a student in a course. A student principal may
// omit student_id.
type EnrollRequest struct {
	StudentID int64 `json:"student_id" binding:"omitempty,gt=0" example:"10"`
	CourseID  int64 `json:"course_id" binding:"required,gt=0" example:"5"`
}

// UpdateProgressRequest overwrites an enrollment's progress
type UpdateProgressRequest struct {
	CompletionStatus   string `json:"completion_status" binding:"required,oneof='Not Started' 'In Progress' Completed" example:"In Progress"`
	ProgressPercentage *int   `json:"progress_percentage" binding:"required,min=0,max=100" example:"40"`
	CertificateIssued  *bool  `json:"certificate_issued,omitempty" example:"false"`
}

// ToModel converts the request into a ProgressUpdate
func (r UpdateProgressRequest) ToModel() models.ProgressUpdate {
	upd := models.ProgressUpdate{
		CompletionStatus:  models.CompletionStatus(r.CompletionStatus),
		CertificateIssued: r.CertificateIssued,
	}
	if r.ProgressPercentage != nil {
		upd.ProgressPercentage = *r.ProgressPercentage
	}
	return upd
}

// MessageResponse carries a plain confirmation message
type MessageResponse struct {
	Message string `json:"message" example:"Successfully unenrolled"`
}
