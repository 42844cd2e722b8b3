// Package errors provides standardized error handling for the catalog
// pipeline, the chat session and BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Catalog gateway failures. "Not found" is never an error: it is an empty string.
	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeCatalogTimeout     ErrorCode = "CATALOG_TIMEOUT"
	ErrCodeCatalogStatus      ErrorCode = "CATALOG_STATUS_ERROR"
	ErrCodeCatalogCircuitOpen ErrorCode = "CATALOG_CIRCUIT_OPEN"

	// Request-level failures.
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"

	// Workflow engine (Zeebe) command failures.
	ErrCodeWorkflowUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"
	ErrCodeWorkflowTimeout     ErrorCode = "WORKFLOW_ENGINE_TIMEOUT"
	ErrCodeWorkflowRejected    ErrorCode = "WORKFLOW_COMMAND_REJECTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code, so sentinel comparisons like
// errors.Is(err, &StandardError{Code: ErrCodeCatalogTimeout}) work.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// AsStandardError extracts a *StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryable reports whether err carries a retryable StandardError.
// Errors outside the taxonomy are treated as retryable: the session's budget
// bounds them anyway.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return true
}

// CodeOf returns the code of a StandardError in the chain, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewCatalogUnavailableError creates a retryable transport error for a catalog query.
func NewCatalogUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Movie catalog unreachable",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogTimeoutError creates a retryable timeout error for a catalog query.
func NewCatalogTimeoutError(endpoint string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Movie catalog timeout",
		Details:   fmt.Sprintf("endpoint: %s", endpoint),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogStatusError maps a non-success HTTP status. Server errors and
// throttling are retryable; other client errors are not.
func NewCatalogStatusError(endpoint string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogStatus,
		Message:   "Movie catalog returned a non-success status",
		Details:   fmt.Sprintf("endpoint: %s, status: %d", endpoint, status),
		Retryable: status >= 500 || status == 429,
		Metadata:  map[string]interface{}{"status": status},
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogCircuitOpenError signals that the breaker rejected the call without trying.
func NewCatalogCircuitOpenError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogCircuitOpen,
		Message:   "Movie catalog temporarily disabled after repeated failures",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInvalidRequestError creates a non-retryable input error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid movie request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetriesExhaustedError wraps the last failure once a retry budget is spent.
func NewRetriesExhaustedError(attempts int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetriesExhausted,
		Message:   fmt.Sprintf("Request failed after %d attempts", attempts),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"attempts": attempts},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewWorkflowEngineError wraps a failed Zeebe command. Only rejections are
// final; connectivity and timeouts may succeed on a later attempt.
func NewWorkflowEngineError(code ErrorCode, operation string, err error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: code != ErrCodeWorkflowRejected,
		Metadata:  map[string]interface{}{"operation": operation},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCatalogUnavailable: "CATALOG_UNAVAILABLE",
	ErrCodeCatalogTimeout:     "CATALOG_TIMEOUT",
	ErrCodeCatalogStatus:      "CATALOG_STATUS_ERROR",
	ErrCodeCatalogCircuitOpen: "CATALOG_UNAVAILABLE",
	ErrCodeInvalidRequest:     "INVALID_REQUEST",
	ErrCodeRetriesExhausted:   "RECOMMENDATION_FAILED",
	ErrCodeInternal:           "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeCatalogStatus:
		return 3

	case ErrCodeCatalogTimeout:
		return 2

	case ErrCodeCatalogCircuitOpen:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.HasPrefix(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "RETRIES"):
		return "SESSION"
	default:
		return "OTHER"
	}
}
