package core

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorType classifies an error for HTTP mapping.
type ErrorType string

const (
	// ErrorTypeValidation indicates a malformed request, rejected before any external call (400)
	ErrorTypeValidation ErrorType = "validation_error"
	// ErrorTypeUpstream indicates a failed places-provider call (502)
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeNotFound indicates a not found error (404)
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeInternal indicates an unexpected server error (500)
	ErrorTypeInternal ErrorType = "internal_error"
)

// AppError is the base error type surfaced to callers.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Provider   string    `json:"provider,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *AppError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error (400).
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewUpstreamError creates an upstream provider error.
func NewUpstreamError(provider string, statusCode int, message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    message,
		StatusCode: statusCode,
		Provider:   provider,
		Err:        err,
	}
}

// NewInternalError creates an internal error (500).
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ParseUpstreamError parses an error response body from an external provider
// into an AppError, embedding the upstream status so callers can distinguish
// validation failures from provider failures.
func ParseUpstreamError(provider string, statusCode int, body []byte, originalErr error) *AppError {
	// Providers commonly wrap errors as {"error": {"message": ...}}
	var errorResponse struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}

	message := string(body)
	if err := json.Unmarshal(body, &errorResponse); err == nil && errorResponse.Error.Message != "" {
		message = errorResponse.Error.Message
	}

	return &AppError{
		Type:       ErrorTypeUpstream,
		Message:    fmt.Sprintf("%s error (status %d): %s", provider, statusCode, message),
		StatusCode: http.StatusBadGateway,
		Provider:   provider,
		Err:        originalErr,
	}
}
