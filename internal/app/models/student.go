package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID              int64     `json:"id" db:"id" example:"10"`
	Email           string    `json:"email" db:"email" example:"ada@example.com"`
	FullName        string    `json:"full_name" db:"full_name" example:"Ada Lovelace"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Bio             *string   `json:"bio,omitempty" db:"bio"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty" db:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// StudentUpdate carries a partial profile update; nil fields keep their
// stored value and an empty optional field clears it.
type StudentUpdate struct {
	FullName        *string
	Phone           *string
	Bio             *string
	ProfileImageURL *string
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Search string
	Offset uint64
	Limit  int
}
