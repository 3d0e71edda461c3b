package session

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

// signToken builds an HS256 token. A zero exp leaves the claim out.
func signToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	claims := tokenClaims{
		Email: "dev@arcitech.io",
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "42",
		},
	}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return tok
}

func TestDecode(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := Decode(signToken(t, "DEVELOPER", exp))
	require.NoError(t, err)

	assert.Equal(t, "42", c.Subject)
	assert.Equal(t, "dev@arcitech.io", c.Email)
	assert.Equal(t, "DEVELOPER", c.Role)
	require.NotNil(t, c.ExpiresAt)
	assert.True(t, c.ExpiresAt.Equal(exp))
}

func TestDecode_NoExpiry(t *testing.T) {
	c, err := Decode(signToken(t, "CUSTOMER", time.Time{}))
	require.NoError(t, err)
	assert.Nil(t, c.ExpiresAt)
	assert.False(t, c.ExpiredAt(time.Now().Add(100*365*24*time.Hour)))
}

func TestDecode_IgnoresSignature(t *testing.T) {
	tok := signToken(t, "SUB_ADMIN", time.Time{})
	tampered := tok[:len(tok)-4] + "AAAA"
	c, err := Decode(tampered)
	require.NoError(t, err)
	assert.Equal(t, "SUB_ADMIN", c.Role)
}

func TestDecode_UnknownAlgorithm(t *testing.T) {
	enc := base64.RawURLEncoding
	tok := enc.EncodeToString([]byte(`{"alg":"XX1"}`)) + "." +
		enc.EncodeToString([]byte(`{"sub":"7","role":"DEVELOPER"}`)) + ".sig"
	c, err := Decode(tok)
	require.NoError(t, err)
	assert.Equal(t, "7", c.Subject)
}

func TestDecode_Malformed(t *testing.T) {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", header + ".abc"},
		{"four segments", header + ".a.b.c"},
		{"bad base64 payload", header + ".!!!.sig"},
		{"payload not json", header + "." + enc.EncodeToString([]byte("not json")) + ".sig"},
		{"exp not numeric", header + "." + enc.EncodeToString([]byte(`{"exp":"soon"}`)) + ".sig"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(tt.token)
			assert.Nil(t, c)
			var decErr *DecodeError
			assert.ErrorAs(t, err, &decErr)
		})
	}
}

func TestClaims_ExpiredAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time { v := now.Add(d); return &v }

	assert.True(t, (&Claims{ExpiresAt: at(-time.Second)}).ExpiredAt(now))
	assert.True(t, (&Claims{ExpiresAt: at(0)}).ExpiredAt(now), "exp equal to now is expired")
	assert.False(t, (&Claims{ExpiresAt: at(time.Second)}).ExpiredAt(now))
	assert.False(t, (&Claims{}).ExpiredAt(now))
}
