package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypePlantNotDetected ErrorType = "plant_not_detected"
	ErrorTypeLabelStore       ErrorType = "label_store"
	ErrorTypeUnknownClass     ErrorType = "unknown_class"
	ErrorTypeAdvisory         ErrorType = "advisory"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates an error for bad user input, such as an upload
// that is not a decodable image.
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewPlantNotDetectedError creates the gatekeeper-rejection error.
func NewPlantNotDetectedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypePlantNotDetected,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// NewLabelStoreError creates an error for a missing or malformed class-name table.
func NewLabelStoreError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeLabelStore,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewUnknownClassError creates an error for a class index with no table entry.
// This is an internal consistency failure, not a user input error.
func NewUnknownClassError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownClass,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewAdvisoryError creates an error for a failed, timed-out or malformed
// response from the external conversational model.
func NewAdvisoryError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeAdvisory,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
