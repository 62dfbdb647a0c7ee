package security

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("token carries no owner identity")
)

// OwnerClaims defines the identity claims we read from the backend credential.
// The token is issued and verified by the remote backend; we only extract the
// owner identity from it, we never validate the signature locally.
type OwnerClaims struct {
	UserID int64  `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// OwnerFromToken extracts the owner identity from a bearer credential.
// Prefers the user_id claim, falls back to sub, then email.
func OwnerFromToken(tokenString string) (string, error) {
	parser := jwt.NewParser()
	claims := &OwnerClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", ErrInvalidToken
	}

	if claims.UserID != 0 {
		return strconv.FormatInt(claims.UserID, 10), nil
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	if claims.Email != "" {
		return claims.Email, nil
	}
	return "", ErrUnauthenticated
}
