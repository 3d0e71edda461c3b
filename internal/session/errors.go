package session

import (
	"errors"
	"fmt"
)

// Error codes carried by AuthError.
const (
	ErrInvalidCredentials   = "AUTH_INVALID_CREDENTIALS"
	ErrInvalidResponse      = "AUTH_INVALID_RESPONSE"
	ErrRegistrationRejected = "AUTH_REGISTRATION_REJECTED"
	ErrNoResponse           = "AUTH_NO_RESPONSE"
	ErrRequestFailed        = "AUTH_REQUEST_FAILED"
)

// ErrNoSession is returned by Claims when no token is stored.
var ErrNoSession = errors.New("no session token")

// AuthError is a login or registration failure. Message is meant for the
// user; Cause keeps the underlying transport error for logs.
type AuthError struct {
	Code    string
	Message string
	Cause   error
}

// Error returns the user-facing message.
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// IsAuthError reports whether err is an AuthError with the given code.
func IsAuthError(err error, code string) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Code == code
	}
	return false
}

// DecodeError means a token could not be parsed locally. It is never shown
// to users; callers treat it as "not authenticated".
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode token: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
