package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// ErrorCategory represents the class of a backend invocation failure.
type ErrorCategory string

const (
	ErrorCategoryTimeout    ErrorCategory = "TIMEOUT"
	ErrorCategoryNetwork    ErrorCategory = "NETWORK"
	ErrorCategoryDNS        ErrorCategory = "DNS"
	ErrorCategoryConnection ErrorCategory = "CONNECTION"
	ErrorCategorySSL        ErrorCategory = "SSL"
	ErrorCategoryCancelled  ErrorCategory = "CANCELLED"
	ErrorCategoryUnknown    ErrorCategory = "UNKNOWN"
)

// CategorizedError carries the category plus retry guidance for a failure.
// The router only falls back to the next backend when ShouldRetry is true;
// everything else propagates immediately.
type CategorizedError struct {
	Type        ErrorCategory
	Message     string
	StatusCode  int
	ShouldRetry bool
	Err         error
}

func (e *CategorizedError) Error() string {
	return e.Message
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// CategorizeError analyzes a backend error and returns its categorization.
// Concrete error types are checked first, then string heuristics.
func CategorizeError(err error) *CategorizedError {
	if err == nil {
		return nil
	}

	// Cancellation is never retryable: the caller gave up, fallback would
	// just burn quota against a dead request.
	if errors.Is(err, context.Canceled) {
		return &CategorizedError{
			Type:        ErrorCategoryCancelled,
			Message:     "Request cancelled by the caller",
			StatusCode:  499,
			ShouldRetry: false,
			Err:         err,
		}
	}

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return &CategorizedError{
			Type:        ErrorCategoryTimeout,
			Message:     "Backend timeout - the model service took too long to respond",
			StatusCode:  http.StatusGatewayTimeout,
			ShouldRetry: true,
			Err:         err,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &CategorizedError{
			Type:        ErrorCategoryConnection,
			Message:     "Connection refused - backend is not accepting connections",
			StatusCode:  http.StatusServiceUnavailable,
			ShouldRetry: true,
			Err:         err,
		}
	}

	errorMessage := strings.ToLower(err.Error())

	if strings.Contains(errorMessage, "timeout") ||
		strings.Contains(errorMessage, "deadline exceeded") {
		return &CategorizedError{
			Type:        ErrorCategoryTimeout,
			Message:     "Backend timeout - the model service took too long to respond",
			StatusCode:  http.StatusGatewayTimeout,
			ShouldRetry: true,
			Err:         err,
		}
	}

	if strings.Contains(errorMessage, "no such host") ||
		strings.Contains(errorMessage, "name resolution") {
		return &CategorizedError{
			Type:        ErrorCategoryDNS,
			Message:     "DNS resolution failed - unable to resolve backend hostname",
			StatusCode:  http.StatusBadGateway,
			ShouldRetry: true,
			Err:         err,
		}
	}

	if strings.Contains(errorMessage, "connection refused") ||
		strings.Contains(errorMessage, "no route to host") {
		return &CategorizedError{
			Type:        ErrorCategoryConnection,
			Message:     "Connection refused - backend is not accepting connections",
			StatusCode:  http.StatusServiceUnavailable,
			ShouldRetry: true,
			Err:         err,
		}
	}

	// TLS problems are configuration errors; retrying another identical
	// handshake will not help.
	if strings.Contains(errorMessage, "tls") ||
		strings.Contains(errorMessage, "certificate") ||
		strings.Contains(errorMessage, "x509") {
		return &CategorizedError{
			Type:        ErrorCategorySSL,
			Message:     "SSL/TLS error - certificate or encryption issue",
			StatusCode:  http.StatusBadGateway,
			ShouldRetry: false,
			Err:         err,
		}
	}

	if strings.Contains(errorMessage, "network is unreachable") ||
		strings.Contains(errorMessage, "connection reset") ||
		strings.Contains(errorMessage, "broken pipe") ||
		strings.Contains(errorMessage, "unexpected eof") {
		return &CategorizedError{
			Type:        ErrorCategoryNetwork,
			Message:     "Network error - unable to reach the backend",
			StatusCode:  http.StatusBadGateway,
			ShouldRetry: true,
			Err:         err,
		}
	}

	// Unknown errors default to no retry to avoid retry storms.
	return &CategorizedError{
		Type:        ErrorCategoryUnknown,
		Message:     "Unexpected error: " + err.Error(),
		StatusCode:  http.StatusInternalServerError,
		ShouldRetry: false,
		Err:         err,
	}
}

// ShouldRetryHTTPStatus reports whether an upstream HTTP status is transient.
func ShouldRetryHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsRetryableError reports whether an error should trigger backend fallback.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return CategorizeError(err).ShouldRetry
}
