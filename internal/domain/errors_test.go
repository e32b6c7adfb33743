package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	err := NewDomainError(ErrCodeValidation, "bad input")
	assert.Equal(t, "[VALIDATION_ERROR] bad input", err.Error())

	wrapped := NewDomainErrorWithCause(ErrCodeInternalError, "boom", errors.New("cause"))
	assert.Contains(t, wrapped.Error(), "boom")
	assert.Contains(t, wrapped.Error(), "cause")
	assert.Equal(t, "cause", errors.Unwrap(wrapped).Error())
}

func TestIsProviderError(t *testing.T) {
	assert.True(t, IsProviderError(ErrMissingCredentials))
	assert.True(t, IsProviderError(NewProviderError("gemini", 429, "quota", nil)))
	assert.True(t, IsProviderError(fmt.Errorf("wrapped: %w", ErrProviderUnavailable)))
	assert.False(t, IsProviderError(ErrEmptyClause))
	assert.False(t, IsProviderError(nil))
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, IsConfigurationError(ErrBatchTooLarge))
	assert.True(t, IsConfigurationError(fmt.Errorf("wrapped: %w", ErrOrchestrationOff)))
	assert.False(t, IsConfigurationError(ErrEmptyClause))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"missing credentials", ErrMissingCredentials, "Missing credentials"},
		{"rejected key", NewProviderError("openai", http.StatusUnauthorized, "bad key", nil), "Missing credentials"},
		{"quota", NewProviderError("gemini", http.StatusTooManyRequests, "quota", nil), "quota exceeded"},
		{"provider down", NewProviderError("gemini", http.StatusBadGateway, "unreachable", nil), "Provider unavailable"},
		{"validation", ErrEmptyClause, "clause text cannot be empty"},
		{"configuration", ErrBatchTooLarge, "batch exceeds"},
		{"not found", ErrAnalysisNotFound, "analysis not found"},
		{"unknown", errors.New("stack trace gibberish"), "Internal processing error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := UserMessage(tt.err)
			if tt.contains == "" {
				assert.Empty(t, msg)
				return
			}
			assert.Contains(t, msg, tt.contains)
			assert.NotContains(t, msg, "gibberish")
		})
	}
}
