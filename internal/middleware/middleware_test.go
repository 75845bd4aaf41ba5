package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func TestHandleAPIError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
		msg    string
	}{
		{apperrors.NewValidationError("student_id and course_id are required"), 400, dto.ErrorCodeValidationFailed, "student_id and course_id are required"},
		{apperrors.ErrStudentNotFound, 404, dto.ErrorCodeResourceNotFound, "student not found"},
		{apperrors.ErrCourseNotFound, 404, dto.ErrorCodeResourceNotFound, "course not found"},
		{apperrors.ErrCapacityExceeded, 400, dto.ErrorCodeCapacityExceeded, "course is full"},
		{apperrors.ErrDuplicateEnrollment, 409, dto.ErrorCodeDuplicateEnrollment, "student is already enrolled in this course"},
		{apperrors.ErrCourseHasEnrollments, 409, dto.ErrorCodeConflict, "course has enrollments and cannot be deleted"},
		{apperrors.ErrEmailAlreadyExists, 409, dto.ErrorCodeResourceAlreadyExists, "email already exists"},
		{apperrors.ErrPermissionDenied, 403, dto.ErrorCodeForbidden, "permission denied"},
		{apperrors.ErrUnauthorized, 401, dto.ErrorCodeUnauthorized, "authentication required"},
		{apperrors.NewStorageError("failed to create enrollment", errors.New(`pq: relation "enrollments" does not exist`)), 500, dto.ErrorCodeDatabaseError, "storage unavailable"},
		{errors.New("boom"), 500, dto.ErrorCodeInternalServer, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code)+"/"+tt.msg, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.msg, resp.Error.Message)
			assert.NotContains(t, w.Body.String(), "relation")
		})
	}
}

type bindTarget struct {
	CourseID int64  `json:"course_id" binding:"required,gt=0"`
	Status   string `json:"completion_status" binding:"omitempty,oneof='Not Started' 'In Progress' Completed"`
}

func TestBindJSON_ReportsJSONFieldNames(t *testing.T) {
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var body bindTarget
		if !BindJSON(c, &body) {
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		body    string
		field   string
		message string
	}{
		{`{}`, "course_id", "course_id is required"},
		{`{"course_id": 1, "completion_status": "Paused"}`, "completion_status", "completion_status must be one of: Not Started, In Progress, Completed"},
		{`{"course_id": "x"}`, "course_id", "course_id has the wrong type"},
		{`{`, "", "request body is not valid JSON"},
		{``, "", "request body is required"},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

		assert.Equal(t, http.StatusBadRequest, w.Code, tt.body)
		resp := decodeError(t, w)
		assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
		assert.Equal(t, tt.field, resp.Error.Field, tt.body)
		assert.Equal(t, tt.message, resp.Error.Message, tt.body)
	}
}

func newPrincipalRouter(required bool, svc *auth.JWTService) *gin.Engine {
	m := NewPrincipalMiddleware(svc, required)
	r := gin.New()
	r.Use(RequestID(), m.Authenticate())
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, GetPrincipal(c))
	})
	r.GET("/admin", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestPrincipalMiddleware(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "edutrack.test"})
	studentToken, _, err := svc.GenerateToken(models.Principal{Role: models.RoleStudent, StudentID: 10})
	require.NoError(t, err)

	get := func(r *gin.Engine, path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	optional := newPrincipalRouter(false, svc)

	w := get(optional, "/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"ADMIN"}`, w.Body.String())

	w = get(optional, "/me", "Bearer "+studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"STUDENT","student_id":10}`, w.Body.String())

	w = get(optional, "/me", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Error.Code)

	w = get(optional, "/admin", "Bearer "+studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	required := newPrincipalRouter(true, svc)
	w = get(required, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Error.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id-1", w.Header().Get(RequestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, w).Error.Code)
	assert.NotContains(t, w.Body.String(), "kaboom")
}
