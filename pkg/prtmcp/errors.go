package prtmcp

import (
	"fmt"
)

// MCPError represents a structured error response for MCP tools.
// Provides actionable information to help AI agents recover from errors.
type MCPError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Diagnosis explains the likely cause
	Diagnosis string `json:"diagnosis,omitempty"`

	// SuggestedActions lists recommended next steps
	SuggestedActions []string `json:"suggested_actions,omitempty"`

	// RetryRecommended indicates if retrying might help
	RetryRecommended bool `json:"retry_recommended"`

	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *MCPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes
const (
	ErrCodeAPIUnavailable      = "api_unavailable"
	ErrCodeInvalidInput        = "invalid_input"
	ErrCodeProviderUnavailable = "provider_unavailable"
)

// NewAPIUnavailableError creates an error for when the parrot API cannot be reached
func NewAPIUnavailableError(baseURL string, cause error) *MCPError {
	e := &MCPError{
		Code:      ErrCodeAPIUnavailable,
		Message:   fmt.Sprintf("Cannot reach the parrot API at %s", baseURL),
		Diagnosis: "parrot may not be running, or was started without --api",
		SuggestedActions: []string{
			"Start parrot with: parrot watch --api",
			"Check the --api-url flag points at the running instance",
		},
		RetryRecommended: true,
		Context:          map[string]interface{}{"url": baseURL},
	}
	if cause != nil {
		e.Context["cause"] = cause.Error()
	}
	return e
}

// NewInvalidInputError creates an error for invalid tool input
func NewInvalidInputError(field, reason string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("Invalid %s: %s", field, reason),
		Context: map[string]interface{}{"field": field},
	}
}

// NewProviderUnavailableError creates an error for when no provider is configured
func NewProviderUnavailableError() *MCPError {
	return &MCPError{
		Code:             ErrCodeProviderUnavailable,
		Message:          "parrot monitor not available",
		Diagnosis:        "The MCP server has no connection to a parrot instance",
		SuggestedActions: []string{"Restart with: parrot mcp --api-url http://<host>:<port>"},
	}
}
