package service

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/config"
	appErrors "github.com/kotkala/EduConnectSystem-sub009/pkg/errors"
)

// TokenService verifies HS256 access tokens minted by the hosted auth provider.
type TokenService struct {
	secret   []byte
	audience []string
	parser   *jwt.Parser
}

// NewTokenService builds a verifier from JWT settings.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		audience: cfg.Audience,
		parser:   jwt.NewParser(opts...),
	}
}

// ValidateToken parses the token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if !token.Valid || claims.UserID() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if !s.audienceAllowed(claims.Audience) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token audience not accepted")
	}
	return claims, nil
}

// audienceAllowed passes when no audience is configured or any token audience matches.
func (s *TokenService) audienceAllowed(tokenAudience jwt.ClaimStrings) bool {
	if len(s.audience) == 0 {
		return true
	}
	for _, want := range s.audience {
		for _, got := range tokenAudience {
			if strings.EqualFold(want, got) {
				return true
			}
		}
	}
	return false
}
