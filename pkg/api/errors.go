package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	ErrUnauthorized      = errors.New("unauthorized: check your API token")
	ErrNotFound          = errors.New("resource not found")
	ErrRateLimit         = errors.New("rate limit exceeded")
	ErrMalformedResponse = errors.New("malformed API response")
)

// Error is an error response from the Nimbus Cloud API. The API reports
// errors as {status_code, error_code, message, response_id}.
type Error struct {
	Op         string
	StatusCode int
	ErrorCode  string   `json:"error_code"`
	Message    string   `json:"-"`
	ResponseID string   `json:"response_id"`
	Err        error    `json:"-"`
	Messages   []string `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.ErrorCode != "" {
		msg = e.ErrorCode
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s failed (HTTP %d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errBody matches the wire schema of API error responses. The message
// field may be a single string or a list of strings.
type errBody struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    any    `json:"message"`
	ResponseID string `json:"response_id"`
}

func (b errBody) message() string {
	switch m := b.Message.(type) {
	case string:
		return m
	case []any:
		parts := make([]string, 0, len(m))
		for _, p := range m {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// IsAuthError reports whether err is a 401/403 from the API.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimit reports whether err is a 429 from the API.
func IsRateLimit(err error) bool {
	if errors.Is(err, ErrRateLimit) {
		return true
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.StatusCode == http.StatusTooManyRequests
	}
	return false
}
