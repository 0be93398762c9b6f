package models

import "github.com/golang-jwt/jwt/v5"

// JwtCustomClaims is the contract the service trusts: an opaque account id
// plus the role set. The core never re-derives identity from anything else.
type JwtCustomClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
