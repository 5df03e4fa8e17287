// Package errors defines the structured error types surfaced by the service.
package errors

import "net/http"

// APIError represents a structured error with an HTTP status, a stable
// machine-readable code, and a human-readable message.
type APIError struct {
	HTTPStatus int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Predefined errors. Handlers and core services return these (or copies with a
// customized message) so callers can branch on the Code field.
var (
	ErrBadRequest          = &APIError{HTTPStatus: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "Invalid request parameters"}
	ErrInvalidJSON         = &APIError{HTTPStatus: http.StatusBadRequest, Code: "INVALID_JSON", Message: "Invalid JSON format"}
	ErrValidation          = &APIError{HTTPStatus: http.StatusBadRequest, Code: "VALIDATION_FAILED", Message: "Request validation failed"}
	ErrTextTooLong         = &APIError{HTTPStatus: http.StatusBadRequest, Code: "TEXT_TOO_LONG", Message: "Input text exceeds the configured maximum length"}
	ErrResourceNotFound    = &APIError{HTTPStatus: http.StatusNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrDuplicateResource   = &APIError{HTTPStatus: http.StatusConflict, Code: "DUPLICATE_RESOURCE", Message: "Resource already exists"}
	ErrInternalServer      = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error"}
	ErrDatabase            = &APIError{HTTPStatus: http.StatusInternalServerError, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrUnauthorized        = &APIError{HTTPStatus: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Authentication required"}
	ErrForbidden           = &APIError{HTTPStatus: http.StatusForbidden, Code: "FORBIDDEN", Message: "Access denied"}
	ErrBudgetExceeded      = &APIError{HTTPStatus: http.StatusPaymentRequired, Code: "BUDGET_EXCEEDED", Message: "Tenant daily translation budget exhausted"}
	ErrRateLimitExceeded   = &APIError{HTTPStatus: http.StatusTooManyRequests, Code: "RATE_LIMIT_EXCEEDED", Message: "Tenant per-minute request limit exceeded"}
	ErrNoAvailableBackend  = &APIError{HTTPStatus: http.StatusServiceUnavailable, Code: "NO_AVAILABLE_BACKEND", Message: "No translation backend could serve the request"}
	ErrBackendInvocation   = &APIError{HTTPStatus: http.StatusBadGateway, Code: "BACKEND_INVOCATION_FAILED", Message: "Translation backend invocation failed"}
	ErrRequestCancelled    = &APIError{HTTPStatus: 499, Code: "REQUEST_CANCELLED", Message: "Request cancelled by the caller"}
)

// NewAPIError creates a copy of a predefined error with a custom message.
func NewAPIError(base *APIError, message string) *APIError {
	return &APIError{
		HTTPStatus: base.HTTPStatus,
		Code:       base.Code,
		Message:    message,
	}
}

// NewAPIErrorWithUpstream creates an error that mirrors an upstream response.
func NewAPIErrorWithUpstream(httpStatus int, code string, message string) *APIError {
	return &APIError{
		HTTPStatus: httpStatus,
		Code:       code,
		Message:    message,
	}
}

// NewValidationError creates a validation error with a custom message.
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrValidation, message)
}

// NewAuthenticationError creates an authentication error with a custom message.
func NewAuthenticationError(message string) *APIError {
	return NewAPIError(ErrUnauthorized, message)
}

// NewNotFoundError creates a not-found error with a custom message.
func NewNotFoundError(message string) *APIError {
	return NewAPIError(ErrResourceNotFound, message)
}

// NewForbiddenError creates a forbidden error with a custom message.
func NewForbiddenError(message string) *APIError {
	return NewAPIError(ErrForbidden, message)
}

// Is reports whether err is an *APIError carrying the same code as target.
// Predefined errors are compared by Code, not identity, so wrapped copies with
// customized messages still match.
func Is(err error, target *APIError) bool {
	if err == nil || target == nil {
		return false
	}
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == target.Code
}
