package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/edutrack/edutrack/internal/app/models/dto"
)

var registerTagNameOnce sync.Once

// UseJSONFieldNames makes validator report fields by their json names, so
// messages say "course_id" rather than "CourseID".
func UseJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindJSON binds the request body into obj. On failure it writes a 400
// VAL_001 response listing the offending fields and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleBindingError(c, err)
		return false
	}
	return true
}

// HandleBindingError converts a bind error into the validation envelope
func HandleBindingError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request data").
		WithSeverity(dto.ErrorSeverityWarning)

	var validationErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &validationErrs):
		fields := make([]dto.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
		}
		detail.Message = fields[0].Message
		detail.Field = fields[0].Field
		detail = detail.WithDetails(fields)
	case errors.As(err, &typeErr):
		detail.Message = typeErr.Field + " has the wrong type"
		detail.Field = typeErr.Field
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		detail.Message = "request body is not valid JSON"
	case errors.Is(err, io.EOF):
		detail.Message = "request body is required"
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + formatOneOf(e.Param())
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

var oneOfParam = regexp.MustCompile(`'[^']*'|\S+`)

// formatOneOf turns "'Not Started' Completed" into "Not Started, Completed"
func formatOneOf(param string) string {
	values := oneOfParam.FindAllString(param, -1)
	for i, v := range values {
		values[i] = strings.Trim(v, "'")
	}
	return strings.Join(values, ", ")
}
