package models

// CompletionStatus is the progress state of an enrollment
type CompletionStatus string

const (
	StatusNotStarted CompletionStatus = "Not Started"
	StatusInProgress CompletionStatus = "In Progress"
	StatusCompleted  CompletionStatus = "Completed"
)

// Valid reports whether s is one of the known completion statuses
func (s CompletionStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Role identifies the kind of caller acting on the API
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)
