package models

import "github.com/golang-jwt/jwt/v5"

// Roles accepted by the API guard.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// JWTClaims carries the identity attached to authenticated requests.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
