package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/config"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		Email:       "admin@school.edu.vn",
		AppMetadata: models.AppMetadata{Role: "Admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://auth.example.test",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "s3cret", Issuer: "https://auth.example.test", Audience: []string{"authenticated"}})

	claims, err := svc.ValidateToken(signToken(t, "s3cret", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, models.RoleAdmin, claims.Role())
}

func TestTokenServiceRejectsBadTokens(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "s3cret", Issuer: "https://auth.example.test", Audience: []string{"authenticated"}})

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://other.example.test"

	noSubject := validClaims()
	noSubject.Subject = ""

	cases := map[string]string{
		"wrong secret":   signToken(t, "other", validClaims()),
		"expired":        signToken(t, "s3cret", expired),
		"wrong audience": signToken(t, "s3cret", wrongAudience),
		"wrong issuer":   signToken(t, "s3cret", wrongIssuer),
		"no subject":     signToken(t, "s3cret", noSubject),
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		_, err := svc.ValidateToken(token)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, appErrors.ErrUnauthorized, name)
	}
}
