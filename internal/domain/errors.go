package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"

	// Extraction errors
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"

	// Generation errors
	CodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	CodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// WithContext attaches a key/value pair that is reported alongside the error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err (or anything it wraps) is a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnsupportedFormatError(extension string) *DomainError {
	return NewError(CodeUnsupportedFormat,
		fmt.Sprintf("File type %s is not supported. Please upload .txt, .pdf, or .docx files.", extension), nil).
		WithContext("extension", extension)
}

func NewExtractionFailedError(format string, cause error) *DomainError {
	return NewError(CodeExtractionFailed, fmt.Sprintf("Failed to read %s document", format), cause).
		WithContext("format", format)
}

func NewConfigurationError(message string) *DomainError {
	return NewError(CodeConfiguration, message, nil)
}

func NewGenerationFailedError(provider string, cause error) *DomainError {
	return NewError(CodeGenerationFailed, "Failed to generate content with the language model", cause).
		WithContext("provider", provider)
}

func NewMalformedResponseError(artifact ArtifactType, cause error) *DomainError {
	return NewError(CodeMalformedResponse, fmt.Sprintf("Model returned a malformed %s response", artifact), cause).
		WithContext("artifact", string(artifact))
}
