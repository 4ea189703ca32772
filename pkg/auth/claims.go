package auth

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the JWT claims carried by an admin access token.
type AccessClaims struct {
	AdminID  int64  `json:"adm"`
	Username string `json:"usr"`
	AccessID string `json:"aid"`
	jwt.RegisteredClaims
}
