package domain

import (
	"fmt"
	"time"
)

// TemplateNotFoundError is raised when report generation references an unknown
// template name. This is a programmer/configuration error and aborts the operation.
type TemplateNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template %q not found", e.Name)
}

// SectionNotFoundError is raised when a template mutation references an unknown
// section within an existing template.
type SectionNotFoundError struct {
	Template string
	Section  string
}

// Error implements the error interface.
func (e *SectionNotFoundError) Error() string {
	return fmt.Sprintf("section %q not found in template %q", e.Section, e.Template)
}

// APIError represents a standardized error response body.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios.
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeDatabase       = "DATABASE_ERROR"
	ErrCodeLLM            = "LLM_ERROR"
	ErrCodeTemplate       = "TEMPLATE_ERROR"
	ErrCodeStorage        = "STORAGE_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// NewAPIError creates a new APIError with a UTC timestamp.
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}
