package models

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeMissingCredential is raised at construction when a required key is empty
	ErrorTypeMissingCredential ErrorType = "missing_credential"
	// ErrorTypeMalformedMetadata is raised when proxy response headers cannot be parsed
	ErrorTypeMalformedMetadata ErrorType = "malformed_response_metadata"
	// ErrorTypeValidation represents invalid input to a client operation
	ErrorTypeValidation ErrorType = "validation"
)

var (
	// ErrMissingCredential matches every missing credential error via errors.Is.
	ErrMissingCredential = errors.New("missing credential")
	// ErrMalformedResponseMetadata matches every response metadata parse error via errors.Is.
	ErrMalformedResponseMetadata = errors.New("malformed response metadata")
)

// AppError represents a structured client error
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Code    string    `json:"code,omitzero"`
	// Field names the config field or header the error is about.
	Field string `json:"field,omitzero"`
	Cause error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap allows error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match the sentinel for the error's type.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrMissingCredential:
		return e.Type == ErrorTypeMissingCredential
	case ErrMalformedResponseMetadata:
		return e.Type == ErrorTypeMalformedMetadata
	}
	return false
}

// NewMissingCredentialError reports an empty required credential field.
func NewMissingCredentialError(field string) *AppError {
	return &AppError{
		Type:    ErrorTypeMissingCredential,
		Message: fmt.Sprintf("missing required credential: %s", field),
		Code:    "MISSING_CREDENTIAL",
		Field:   field,
	}
}

// NewMalformedMetadataError reports a response header that could not be parsed.
func NewMalformedMetadataError(header string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedMetadata,
		Message: fmt.Sprintf("malformed response metadata in header %s", header),
		Code:    "MALFORMED_RESPONSE_METADATA",
		Field:   header,
		Cause:   cause,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
