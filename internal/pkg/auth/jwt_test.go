package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
)

func newTestJWTService(ttl time.Duration) *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: ttl, TokenIssuer: "edutrack.test"})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	token, expiresAt, err := svc.GenerateToken(models.Principal{Role: models.RoleStudent, StudentID: 10})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{Role: models.RoleStudent, StudentID: 10}, claims.Principal())
	assert.Equal(t, "10", claims.Subject)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService(-time.Minute)

	token, _, err := svc.GenerateToken(models.AdminPrincipal)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecretOrIssuer(t *testing.T) {
	token, _, err := newTestJWTService(time.Hour).GenerateToken(models.AdminPrincipal)
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "edutrack.test"})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	otherIssuer := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "elsewhere"})
	_, err = otherIssuer.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	_, err = other.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestGenerateToken_RejectsIncompletePrincipal(t *testing.T) {
	svc := newTestJWTService(time.Hour)

	_, _, err := svc.GenerateToken(models.Principal{Role: models.RoleStudent})
	assert.Error(t, err)

	_, _, err = svc.GenerateToken(models.Principal{Role: "GUEST"})
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "abc.def.ghi", "Basic Zm9vOmJhcg==", "Bearer "} {
		_, err := ExtractBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidFormat, header)
	}
}
