package middleware

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models/dto"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

// Recovery turns a handler panic into a 500 envelope and logs it
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", GetRequestID(c)).
			Str("panic", fmt.Sprint(recovered)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")

		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(detail))
	})
}

// CORS allows the student and admin portals to call the API from the browser
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
