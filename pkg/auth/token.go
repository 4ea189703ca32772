package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sijangmap/marketmap-backend/pkg/config"
)

// MintAccessToken issues a signed HS256 access token for an admin session.
func MintAccessToken(cfg config.JWTConfig, adminID int64, username, accessID string, now time.Time) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is not configured")
	}
	if adminID <= 0 {
		return "", fmt.Errorf("admin id must be positive")
	}
	if accessID == "" {
		return "", fmt.Errorf("access id cannot be empty")
	}

	expires := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	claims := AccessClaims{
		AdminID:  adminID,
		Username: username,
		AccessID: accessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the signature, issuer and expiry of a token.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessClaims, error) {
	return parseAccessToken(cfg, raw, nil)
}

// ParseAccessTokenAllowExpired validates everything except the expiry claim.
// Used during refresh, where the access token may have just lapsed.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, raw string) (*AccessClaims, error) {
	return parseAccessToken(cfg, raw, []jwt.ParserOption{jwt.WithoutClaimsValidation()})
}

func parseAccessToken(cfg config.JWTConfig, raw string, extra []jwt.ParserOption) (*AccessClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	}
	opts = append(opts, extra...)

	var claims AccessClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("access token is not valid")
	}
	if claims.AdminID <= 0 || claims.AccessID == "" {
		return nil, fmt.Errorf("access token is missing session claims")
	}
	return &claims, nil
}
