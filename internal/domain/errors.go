package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeProvider      = "PROVIDER_ERROR"
	ErrCodeParse         = "PARSE_ERROR"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Configuration errors
var (
	ErrInvalidChunkConfig = NewDomainError(ErrCodeConfiguration, "invalid chunking configuration")
	ErrBatchTooLarge      = NewDomainError(ErrCodeConfiguration, "batch exceeds the maximum clause count")
	ErrOrchestrationOff   = NewDomainError(ErrCodeConfiguration, "batch processing requires useAdvancedOrchestration to be enabled")
	ErrBatchProcessingOff = NewDomainError(ErrCodeConfiguration, "batch processing requires enableBatchProcessing to be enabled")
)

// Validation errors
var (
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyClause          = NewDomainError(ErrCodeValidation, "clause text cannot be empty")
)

// Provider errors
var (
	ErrMissingCredentials  = NewDomainError(ErrCodeProvider, "model provider credentials are not configured")
	ErrProviderUnavailable = NewDomainError(ErrCodeProvider, "model provider is unavailable")
)

// Not found errors
var (
	ErrAnalysisNotFound = NewDomainError(ErrCodeNotFound, "analysis not found")
)

// ProviderError carries an HTTP-like status from a model or embedding
// backend failure (auth, quota, timeout, malformed response).
type ProviderError struct {
	StatusCode int
	Provider   string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s provider error (status %d): %s: %v", e.Provider, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s provider error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider string, status int, message string, err error) *ProviderError {
	return &ProviderError{
		StatusCode: status,
		Provider:   provider,
		Message:    message,
		Err:        err,
	}
}

// IsProviderError reports whether err belongs to the provider failure family.
func IsProviderError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return true
	}
	var de *DomainError
	return errors.As(err, &de) && de.Code == ErrCodeProvider
}

// IsConfigurationError reports whether err is a configuration failure.
func IsConfigurationError(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == ErrCodeConfiguration
}

// UserMessage renders a propagated error as a single human-readable
// notification. Parser internals and stack traces never reach the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrMissingCredentials) {
		return "Missing credentials: configure a model provider API key and try again."
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Missing credentials: the configured API key was rejected."
		case http.StatusTooManyRequests:
			return "Provider unavailable: quota exceeded, please retry later."
		default:
			return "Provider unavailable: the language model service could not be reached."
		}
	}

	var de *DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case ErrCodeConfiguration, ErrCodeValidation, ErrCodeNotFound:
			return de.Message
		case ErrCodeProvider:
			return "Provider unavailable: the language model service could not be reached."
		}
	}

	return "Internal processing error, please try again."
}
