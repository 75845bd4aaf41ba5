package models

// Principal is the caller an operation acts for
type Principal struct {
	Role      Role  `json:"role"`
	StudentID int64 `json:"student_id,omitempty"`
}

// AdminPrincipal is used when authentication is optional and no token was sent
var AdminPrincipal = Principal{Role: RoleAdmin}

// IsAdmin reports whether p may act on any student's behalf
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanActFor reports whether p may act on studentID's enrollments
func (p Principal) CanActFor(studentID int64) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == RoleStudent && p.StudentID > 0 && p.StudentID == studentID
}
