package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

// ErrInvalidFormat is returned for an Authorization header that is not "Bearer <token>"
var ErrInvalidFormat = errors.New("invalid token format")

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService signs and verifies principal tokens
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
	}
}

// Claims defines JWT token content
type Claims struct {
	Role      models.Role `json:"role"`
	StudentID int64       `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal returns the caller described by the claims
func (c *Claims) Principal() models.Principal {
	return models.Principal{Role: c.Role, StudentID: c.StudentID}
}

// GenerateToken signs an HS256 access token for p
func (s *JWTService) GenerateToken(p models.Principal) (string, time.Time, error) {
	if p.Role != models.RoleAdmin && p.Role != models.RoleStudent {
		return "", time.Time{}, fmt.Errorf("unknown role %q", p.Role)
	}
	if p.Role == models.RoleStudent && p.StudentID <= 0 {
		return "", time.Time{}, errors.New("student token needs a student id")
	}

	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenExp)

	subject := string(p.Role)
	if p.Role == models.RoleStudent {
		subject = strconv.FormatInt(p.StudentID, 10)
	}

	claims := &Claims{
		Role:      p.Role,
		StudentID: p.StudentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   subject,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses tokenString and returns its claims. Expired tokens map
// to apperrors.ErrTokenExpired, everything else to apperrors.ErrTokenInvalid.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.TokenIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.TokenIssuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}

	switch claims.Role {
	case models.RoleAdmin:
	case models.RoleStudent:
		if claims.StudentID <= 0 {
			return nil, apperrors.ErrTokenInvalid
		}
	default:
		return nil, apperrors.ErrTokenInvalid
	}

	return claims, nil
}

// ExtractBearerToken extracts the token from an Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", ErrInvalidFormat
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidFormat
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidFormat
	}
	return token, nil
}
