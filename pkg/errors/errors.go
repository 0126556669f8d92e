package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur while
// talking to the X API
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limited"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed API error
func New(errorType ErrorType, message string, code int) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// Kind returns the error type string for any error. Typed API errors map to
// their ErrorType; everything else is reported as unknown. This is the string
// recorded in the metadata artifact's error field.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if stderrors.As(err, &apiErr) {
		return string(apiErr.Type)
	}
	return string(ErrorTypeUnknown)
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError:
		return true
	case ErrorTypeAuth, ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeRateLimit:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404, 429: // Outcomes that won't change within a run
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
