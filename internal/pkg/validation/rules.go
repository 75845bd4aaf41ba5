package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	EmailPattern = `^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`

	// Course codes look like "GO-101" or "CS_2024"
	CourseCodePattern = `^[A-Za-z0-9][A-Za-z0-9_\-]*$`

	CourseCodeMinLength = 3
	CourseCodeMaxLength = 50

	NameMinLength = 2
	NameMaxLength = 255
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email      *regexp.Regexp
	CourseCode *regexp.Regexp
}{
	Email:      regexp.MustCompile(EmailPattern),
	CourseCode: regexp.MustCompile(CourseCodePattern),
}

// StringRule checks one string field
type StringRule struct {
	Field    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
	Hint     string
}

// String starts a required rule for field
func String(field, value string) *StringRule {
	return &StringRule{
		Field:    field,
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// Optional lets the empty string pass
func (r *StringRule) Optional() *StringRule {
	r.Required = false
	return r
}

// Length bounds the rune count; zero means unbounded
func (r *StringRule) Length(min, max int) *StringRule {
	r.MinLen = min
	r.MaxLen = max
	return r
}

// Matches requires the value to match pattern; hint describes the format
func (r *StringRule) Matches(pattern *regexp.Regexp, hint string) *StringRule {
	r.Pattern = pattern
	r.Hint = hint
	return r
}

// Check returns a validation error describing the first failed constraint
func (r *StringRule) Check() error {
	if r.Value == "" {
		if r.Required {
			return apperrors.NewValidationError(r.Field + " is required")
		}
		return nil
	}

	n := utf8.RuneCountInString(r.Value)
	if r.MinLen > 0 && n < r.MinLen {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at least %d characters", r.Field, r.MinLen))
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be at most %d characters", r.Field, r.MaxLen))
	}

	if r.Pattern != nil && !r.Pattern.MatchString(r.Value) {
		hint := r.Hint
		if hint == "" {
			hint = "has an invalid format"
		}
		return apperrors.NewValidationError(r.Field + " " + hint)
	}

	return nil
}

// First returns the first failing check, or nil
func First(rules ...*StringRule) error {
	for _, rule := range rules {
		if err := rule.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Email is the rule for a student email address
func Email(value string) *StringRule {
	return String("email", value).Length(0, 255).Matches(CompiledPatterns.Email, "must be a valid email address")
}

// CourseCode is the rule for a course code
func CourseCode(value string) *StringRule {
	return String("course_code", value).
		Length(CourseCodeMinLength, CourseCodeMaxLength).
		Matches(CompiledPatterns.CourseCode, "may only contain letters, digits, '-' and '_'")
}

// Name is the rule for a person's name or a title
func Name(field, value string) *StringRule {
	return String(field, value).Length(NameMinLength, NameMaxLength)
}
