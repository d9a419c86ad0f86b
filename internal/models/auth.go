package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries identity information inside access tokens.
type JWTClaims struct {
	MemberID string     `json:"member_id"`
	Role     MemberRole `json:"role"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	jwt.RegisteredClaims
}
