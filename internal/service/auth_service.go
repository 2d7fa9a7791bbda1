package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

// AuthService validates and issues the bearer tokens guarding mutating routes.
type AuthService struct {
	secret     []byte
	expiration time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(secret string, expiration time.Duration) *AuthService {
	return &AuthService{secret: []byte(secret), expiration: expiration}
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// IssueToken signs a short-lived access token for the given subject. The API
// itself has no credential flow; tokens are minted out-of-band by operator
// tooling sharing the guard's secret.
func (s *AuthService) IssueToken(userID, role string) (string, error) {
	now := time.Now()
	claims := models.JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
