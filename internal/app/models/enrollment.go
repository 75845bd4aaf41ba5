package models

import "time"

// Enrollment links one student to one course
type Enrollment struct {
	ID                 int64            `json:"id" db:"id" example:"1"`
	StudentID          int64            `json:"student_id" db:"student_id" example:"10"`
	CourseID           int64            `json:"course_id" db:"course_id" example:"5"`
	EnrollmentDate     time.Time        `json:"enrollment_date" db:"enrollment_date"`
	CompletionStatus   CompletionStatus `json:"completion_status" db:"completion_status" example:"Not Started"`
	ProgressPercentage int              `json:"progress_percentage" db:"progress_percentage" example:"0"`
	CertificateIssued  bool             `json:"certificate_issued" db:"certificate_issued" example:"false"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`
}

// NewEnrollment returns a fresh enrollment with the admission defaults
func NewEnrollment(studentID, courseID int64, now time.Time) *Enrollment {
	return &Enrollment{
		StudentID:          studentID,
		CourseID:           courseID,
		EnrollmentDate:     now,
		CompletionStatus:   StatusNotStarted,
		ProgressPercentage: 0,
		CertificateIssued:  false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// EnrollmentDetail enriches Enrollment with student and course info
type EnrollmentDetail struct {
	Enrollment
	StudentName  string `json:"student_name" db:"student_name"`
	StudentEmail string `json:"student_email" db:"student_email"`
	CourseTitle  string `json:"course_title" db:"course_title"`
	CourseCode   string `json:"course_code" db:"course_code"`
}

// EnrollmentFilter narrows enrollment listings; zero values mean no filter
type EnrollmentFilter struct {
	StudentID int64
	CourseID  int64
}

// ProgressUpdate is the set of fields a progress update may change
type ProgressUpdate struct {
	CompletionStatus   CompletionStatus
	ProgressPercentage int
	CertificateIssued  *bool
}
