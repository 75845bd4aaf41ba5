package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/auth"
	"github.com/edutrack/edutrack/internal/pkg/logger"
)

const principalKey = "principal"

// PrincipalMiddleware resolves the caller of each request from an optional
// bearer token.
type PrincipalMiddleware struct {
	jwtService *auth.JWTService
	required   bool
}

// NewPrincipalMiddleware creates a new PrincipalMiddleware. When required is
// false, requests without a token act as ADMIN.
func NewPrincipalMiddleware(jwtService *auth.JWTService, required bool) *PrincipalMiddleware {
	return &PrincipalMiddleware{
		jwtService: jwtService,
		required:   required,
	}
}

// Authenticate stores the request's principal in the context. A token that
// is present but invalid is always rejected.
func (m *PrincipalMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		if header == "" {
			if m.required {
				HandleAPIError(c, apperrors.ErrUnauthorized)
				return
			}
			c.Set(principalKey, models.AdminPrincipal)
			c.Next()
			return
		}

		tokenString, err := auth.ExtractBearerToken(header)
		if err != nil {
			HandleAPIError(c, apperrors.ErrTokenInvalid)
			return
		}

		if m.jwtService == nil {
			HandleAPIError(c, apperrors.ErrTokenInvalid)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug().Err(err).Str("request_id", GetRequestID(c)).Msg("Rejected bearer token")
			HandleAPIError(c, err)
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// RequireAdmin rejects non-admin principals with 403
func (m *PrincipalMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetPrincipal(c).IsAdmin() {
			HandleAPIError(c, apperrors.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the principal set by Authenticate. Without one, the
// zero Principal is returned, which may act for nobody.
func GetPrincipal(c *gin.Context) models.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Principal{}
}
