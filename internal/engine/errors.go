// internal/engine/errors.go
package engine

import (
	"context"
	"errors"
	"fmt"
)

// Common engine errors
var (
	ErrBrowserNotFound = errors.New("chrome browser not found")
	ErrBrowserFailed   = errors.New("browser render failed")
	ErrTimeout         = errors.New("request timeout")
	ErrInvalidURL      = errors.New("invalid URL")
	ErrNetworkError    = errors.New("network error")
	ErrBadStatus       = errors.New("unexpected HTTP status")
	ErrReadError       = errors.New("failed to read response body")
)

// ErrorCode represents a specific fetch failure
type ErrorCode string

const (
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeBrowser      ErrorCode = "BROWSER_ERROR"
	ErrCodeNoBrowser    ErrorCode = "BROWSER_NOT_FOUND"
	ErrCodeNetworkError ErrorCode = "NETWORK_ERROR"
	ErrCodeBadStatus    ErrorCode = "BAD_STATUS"
	ErrCodeReadError    ErrorCode = "READ_ERROR"
)

var codeSentinels = map[ErrorCode]error{
	ErrCodeTimeout:      ErrTimeout,
	ErrCodeValidation:   ErrInvalidURL,
	ErrCodeBrowser:      ErrBrowserFailed,
	ErrCodeNoBrowser:    ErrBrowserNotFound,
	ErrCodeNetworkError: ErrNetworkError,
	ErrCodeBadStatus:    ErrBadStatus,
	ErrCodeReadError:    ErrReadError,
}

// EngineError wraps fetch errors with additional context
type EngineError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Is matches another EngineError by code, the sentinel of the code, or the
// underlying error
func (e *EngineError) Is(target error) bool {
	if t, ok := target.(*EngineError); ok {
		return e.Code == t.Code
	}
	if s, ok := codeSentinels[e.Code]; ok && s == target {
		return true
	}
	return errors.Is(e.Underlying, target)
}

// GetStatusCode exposes the HTTP status to the retry policy
func (e *EngineError) GetStatusCode() int {
	return e.StatusCode
}

// Retryable reports whether another attempt may succeed
func (e *EngineError) Retryable() bool {
	return e.Retry
}

// NewEngineError creates a new EngineError
func NewEngineError(code ErrorCode, message string, err error) *EngineError {
	return &EngineError{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// NewStatusError reports a non-200 response
func NewStatusError(statusCode int, status string) *EngineError {
	e := NewEngineError(ErrCodeBadStatus, fmt.Sprintf("status %d %s", statusCode, status), nil)
	e.StatusCode = statusCode
	return e
}

// ClassifyTransportError turns a client error into a timeout or network EngineError
func ClassifyTransportError(err error) *EngineError {
	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeout) && timeout.Timeout()) {
		return NewEngineError(ErrCodeTimeout, "request timed out", err).WithRetry()
	}
	if errors.Is(err, context.Canceled) {
		return NewEngineError(ErrCodeNetworkError, "request cancelled", err)
	}
	return NewEngineError(ErrCodeNetworkError, "request failed", err).WithRetry()
}

// WithRetry marks the error as retryable
func (e *EngineError) WithRetry() *EngineError {
	e.Retry = true
	return e
}

// WithDetail adds a detail to the error
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	e.Details[key] = value
	return e
}
