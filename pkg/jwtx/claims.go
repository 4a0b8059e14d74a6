// Package jwtx extracts claims from tokens minted by the identity provider.
//
// Tokens are decoded without cryptographic verification: they were obtained
// directly from the provider over TLS and the client holds no verification
// keys. Only claim extraction is needed here.
package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry reports a token that carries no exp claim.
var ErrNoExpiry = errors.New("jwtx: token has no expiry claim")

// Claims are the provider token claims the client reads.
type Claims struct {
	jwt.RegisteredClaims

	// Email is present on identity tokens.
	Email string `json:"email,omitempty"`
}

// Decode parses a token and returns its claims without verifying the
// signature.
func Decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

// ExpiresAt returns the expiry timestamp embedded in a token.
func ExpiresAt(token string) (time.Time, error) {
	claims, err := Decode(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
