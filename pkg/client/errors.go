package client

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Annotation is attached to every error the pipeline returns for a failed
// call. FriendlyMessage is safe to show to users.
type Annotation struct {
	FriendlyMessage string
	Timestamp       time.Time
	Environment     string
}

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	// Message is the server-provided message, empty if the body had none.
	Message string
	Method  string
	Path    string
	Annotation
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// NetworkError means the request was sent but no response came back
// (connection refused, DNS, timeout, CORS-equivalent proxy failures).
type NetworkError struct {
	Method string
	Path   string
	Err    error
	Annotation
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("no response for %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the request could not be built. Err is the original
// error, unchanged.
type RequestError struct {
	Err error
	Annotation
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("create request: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ResponseError means the server answered 2xx but the body could not be
// decoded, such as an HTML page from a proxy in front of the API.
type ResponseError struct {
	Method string
	Path   string
	Status int
	Err    error
	Annotation
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("decode %s %s response (HTTP %d): %v", e.Method, e.Path, e.Status, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// FriendlyMessage returns the user-facing text for err. Rendering code
// should show this and never err.Error().
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.FriendlyMessage != "" {
		return httpErr.FriendlyMessage
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.FriendlyMessage != "" {
		return netErr.FriendlyMessage
	}
	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.FriendlyMessage != "" {
		return respErr.FriendlyMessage
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.FriendlyMessage != "" {
		return reqErr.FriendlyMessage
	}
	return msgUnexpected
}

const (
	msgUnreachable = "Unable to connect to the server. Please check your internet connection."
	msgUnexpected  = "An unexpected error occurred. Please try again."
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Please check your input and try again.",
	http.StatusUnauthorized:        "Your session has expired. Please log in again.",
	http.StatusForbidden:           "You don't have permission to perform this action.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusUnprocessableEntity: "Validation error. Please check your input.",
	http.StatusInternalServerError: "An unexpected error occurred. Please try again later.",
}

// statusMessage maps an HTTP status to its friendly message.
func statusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Server error (%d). Please try again later.", code)
}
