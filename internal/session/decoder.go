package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject string
	Email   string
	Role    string
	// ExpiresAt is nil when the token has no exp claim.
	ExpiresAt *time.Time
}

// ExpiredAt reports whether the claims are expired at t. A token without
// an expiry never expires locally.
func (c *Claims) ExpiredAt(t time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(t)
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Decode parses token locally without verifying its signature.
func Decode(token string) (*Claims, error) {
	var tc tokenClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &tc)
	// Claims are populated before the alg header is looked up.
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, &DecodeError{Err: err}
	}

	c := &Claims{
		Subject: tc.Subject,
		Email:   tc.Email,
		Role:    tc.Role,
	}
	if tc.ExpiresAt != nil {
		exp := tc.ExpiresAt.Time
		c.ExpiresAt = &exp
	}
	return c, nil
}
