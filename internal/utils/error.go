package utils

import (
	"fmt"
	"net/http"
)

// Error codes with HTTP status mapping
const (
	// General errors
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"

	// Connection errors
	ErrCodeConnectionNotFound = "CONNECTION_NOT_FOUND"
	ErrCodeConnectionFailed   = "CONNECTION_FAILED"
	ErrCodeIntrospectionError = "INTROSPECTION_ERROR"

	// Schema errors
	ErrCodeSchemaLoadFailed   = "SCHEMA_LOAD_FAILED"
	ErrCodeInvalidDeclaration = "INVALID_DECLARATION"
	ErrCodeDiffFailed         = "DIFF_FAILED"
	ErrCodeInstallFailed      = "INSTALL_FAILED"

	// Authentication errors
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeInvalidToken = "INVALID_TOKEN"
)

// HTTPStatus maps error codes to HTTP status codes
var HTTPStatus = map[string]int{
	ErrCodeInvalidRequest:     http.StatusBadRequest,
	ErrCodeValidationFailed:   http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeRateLimitExceeded:  http.StatusTooManyRequests,

	ErrCodeConnectionNotFound: http.StatusNotFound,
	ErrCodeConnectionFailed:   http.StatusServiceUnavailable,
	ErrCodeIntrospectionError: http.StatusInternalServerError,

	ErrCodeSchemaLoadFailed:   http.StatusInternalServerError,
	ErrCodeInvalidDeclaration: http.StatusUnprocessableEntity,
	ErrCodeDiffFailed:         http.StatusInternalServerError,
	ErrCodeInstallFailed:      http.StatusInternalServerError,

	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeInvalidToken: http.StatusUnauthorized,
}

// AppError represents an application error with additional context
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for creating errors
type ErrorBuilder struct {
	code    string
	message string
	details string
	cause   error
}

// NewErrorBuilder creates a new error builder
func NewErrorBuilder(code string) *ErrorBuilder {
	return &ErrorBuilder{code: code}
}

// WithMessage sets the error message
func (eb *ErrorBuilder) WithMessage(message string) *ErrorBuilder {
	eb.message = message
	return eb
}

// WithDetails sets the error details
func (eb *ErrorBuilder) WithDetails(details string) *ErrorBuilder {
	eb.details = details
	return eb
}

// WithCause sets the underlying error cause
func (eb *ErrorBuilder) WithCause(cause error) *ErrorBuilder {
	eb.cause = cause
	return eb
}

// Build constructs the final AppError
func (eb *ErrorBuilder) Build() *AppError {
	if eb.message == "" {
		eb.message = getDefaultMessage(eb.code)
	}

	return &AppError{
		Code:    eb.code,
		Message: eb.message,
		Details: eb.details,
		Cause:   eb.cause,
	}
}

// getDefaultMessage returns a default message for error codes
func getDefaultMessage(code string) string {
	messages := map[string]string{
		ErrCodeInvalidRequest:     "The request is invalid",
		ErrCodeValidationFailed:   "Validation failed",
		ErrCodeUnauthorized:       "Unauthorized access",
		ErrCodeForbidden:          "Access forbidden",
		ErrCodeNotFound:           "Resource not found",
		ErrCodeInternalError:      "Internal server error",
		ErrCodeServiceUnavailable: "Service temporarily unavailable",
		ErrCodeRateLimitExceeded:  "Rate limit exceeded",

		ErrCodeConnectionNotFound: "Connection not found",
		ErrCodeConnectionFailed:   "Database connection failed",
		ErrCodeIntrospectionError: "Live schema introspection failed",

		ErrCodeSchemaLoadFailed:   "Schema declarations could not be loaded",
		ErrCodeInvalidDeclaration: "Invalid table declaration",
		ErrCodeDiffFailed:         "Schema diff computation failed",
		ErrCodeInstallFailed:      "Schema install failed",

		ErrCodeTokenExpired: "Token expired",
		ErrCodeInvalidToken: "Invalid token",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Unknown error"
}

// Convenience functions for common error types
func NewConnectionNotFoundError(name string) *AppError {
	return NewErrorBuilder(ErrCodeConnectionNotFound).
		WithMessage(fmt.Sprintf("connection %s not found", name)).
		Build()
}

func NewIntrospectionError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeIntrospectionError).
		WithCause(cause).
		WithDetails(details).
		Build()
}

func NewDiffError(cause error, details string) *AppError {
	return NewErrorBuilder(ErrCodeDiffFailed).
		WithCause(cause).
		WithDetails(details).
		Build()
}

func NewValidationError(message string, details string) *AppError {
	return NewErrorBuilder(ErrCodeValidationFailed).
		WithMessage(message).
		WithDetails(details).
		Build()
}

func NewAuthenticationError(message string) *AppError {
	return NewErrorBuilder(ErrCodeUnauthorized).
		WithMessage(message).
		Build()
}

// IsErrorType checks if an error matches a specific error code
func IsErrorType(err error, code string) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetErrorStatus returns the HTTP status code for an error
func GetErrorStatus(err error) int {
	if appErr, ok := err.(*AppError); ok {
		if status, exists := HTTPStatus[appErr.Code]; exists {
			return status
		}
	}
	return http.StatusInternalServerError
}
