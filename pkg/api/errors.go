package api

import "fmt"

// ErrorType represents the category of an API error.
type ErrorType string

const (
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
)

// Stable machine-readable error codes. ML-000 and ML-002 are reserved for
// the auth layer and are never reused by business errors.
const (
	CodeAccessDenied      = "ML-000"
	CodeInvalidRequest    = "ML-001"
	CodeForbidden         = "ML-002"
	CodeBookNotFound      = "ML-101"
	CodeBookNotUpdatable  = "ML-102"
	CodeBookNotForSale    = "ML-103"
	CodeCustomerNotFound  = "ML-201"
	CodeBooksNotFound     = "ML-202"
)

// APIError represents a structured API error with type, code, and message.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an APIError for JSON serialization as the top-level
// error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// NewAccessDeniedError creates the APIError returned for every
// authentication failure. The body is deliberately coarse: it never says
// which check failed.
func NewAccessDeniedError() *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeAccessDenied,
		Message: "Access Denied",
	}
}

// NewForbiddenError creates the APIError returned when an authenticated
// caller lacks the privilege for the requested resource.
func NewForbiddenError() *APIError {
	return &APIError{
		Type:    ErrorTypeForbidden,
		Code:    CodeForbidden,
		Message: "Forbidden",
	}
}

// NewInvalidRequestError creates an APIError for malformed request data.
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

// NewNotFoundError creates an APIError with a domain-specific code.
func NewNotFoundError(code, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewBadRequestError creates an APIError for a business-rule violation
// with a domain-specific code.
func NewBadRequestError(code, message string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Code:    code,
		Message: message,
	}
}

// NewServerError creates an APIError for internal server errors. Internal
// detail stays in the logs, not in the response body.
func NewServerError() *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Message: "internal server error",
	}
}
