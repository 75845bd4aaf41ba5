package models

import "time"

// Course represents a course and its cached enrollment counter.
// Invariant: 0 <= EnrolledCount <= MaxCapacity.
type Course struct {
	ID             int64     `json:"id" db:"id" example:"5"`
	CourseCode     string    `json:"course_code" db:"course_code" example:"GO-101"`
	Title          string    `json:"title" db:"title" example:"Practical Go"`
	Description    *string   `json:"description,omitempty" db:"description"`
	InstructorName *string   `json:"instructor_name,omitempty" db:"instructor_name"`
	MaxCapacity    int       `json:"max_capacity" db:"max_capacity" example:"30"`
	EnrolledCount  int       `json:"enrolled_count" db:"enrolled_count" example:"0"`
	SeatVersion    int64     `json:"seat_version" db:"seat_version" example:"0"`
	DurationWeeks  *int      `json:"duration_weeks,omitempty" db:"duration_weeks"`
	Price          float64   `json:"price" db:"price" example:"0"`
	ImageURL       *string   `json:"image_url,omitempty" db:"image_url"`
	Category       *string   `json:"category,omitempty" db:"category"`
	Level          string    `json:"level" db:"level" example:"Beginner"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// HasCapacity reports whether one more enrollment fits
func (c *Course) HasCapacity() bool {
	return c.EnrolledCount < c.MaxCapacity
}

// CourseFilter narrows course listings
type CourseFilter struct {
	Category string
	Level    string
	Search   string
	Offset   uint64
	Limit    int
}

// CourseUpdate carries a partial update; nil fields keep their stored value
type CourseUpdate struct {
	Title          *string
	Description    *string
	InstructorName *string
	MaxCapacity    *int
	DurationWeeks  *int
	Price          *float64
	ImageURL       *string
	Category       *string
	Level          *string
}
