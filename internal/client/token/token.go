// Package token decodes claims from Snipper access tokens on the client
// side. The client never verifies signatures (it has no key material); it
// only needs the subject and expiry claims to decide whether a cached token
// is still usable and which user it belongs to. The server remains the
// authority: a stale or tampered token is simply rejected with 401.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the subset of access-token claims the client relies on.
type Claims struct {
	jwt.RegisteredClaims
}

// Decode parses the claims of a compact JWT without verifying its
// signature. Returns ErrInvalidToken for anything that is not a
// well-formed three-segment token with a JSON payload.
func Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject returns the username carried in the token's "sub" claim.
func (c *Claims) Username() string {
	return c.Subject
}

// Expired reports whether the token's "exp" claim is in the past at the
// given instant. A token without an expiry claim is treated as expired so
// that a refresh is forced rather than trusting it indefinitely.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Before(now)
}
