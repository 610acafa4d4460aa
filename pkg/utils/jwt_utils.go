package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptyJWTSecret is returned when token validation is attempted without a secret.
var ErrEmptyJWTSecret = errors.New("jwt secret is not configured")

// StaffClaims are the claims carried by tokens the staff identity provider issues
// to registry officers.
type StaffClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken parses and validates an HS256 token string against secret.
func ValidateToken(tokenString string, secret []byte) (*StaffClaims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptyJWTSecret
	}
	claims := &StaffClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
