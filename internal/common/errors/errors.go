// Package errors provides standardized error handling for the assignment pipeline.
package errors

import (
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
	// Business outcomes that stop a run without being failures.
	ErrCodeProjectNotFound      ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodePredictionNotFound   ErrorCode = "PREDICTION_NOT_FOUND"
	ErrCodePredictionInvalid    ErrorCode = "PREDICTION_INVALID"
	ErrCodeProjectNotEligible   ErrorCode = "PROJECT_NOT_ELIGIBLE"
	ErrCodeConfidenceTooLow     ErrorCode = "CONFIDENCE_TOO_LOW"
	ErrCodeNoVendorFound        ErrorCode = "NO_VENDOR_FOUND"
	ErrCodeDuplicateEvent       ErrorCode = "DUPLICATE_EVENT"

	// Technical failures.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeExternalCallFailed       ErrorCode = "EXTERNAL_CALL_FAILED"
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeAuthenticationFailed     ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewProjectNotFoundError creates a non-retryable lookup error.
func NewProjectNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProjectNotFound,
		Message:   "No project matched the uploaded video",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionNotFoundError creates a non-retryable missing-blob error.
func NewPredictionNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionNotFound,
		Message:   "Prediction object does not exist",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionInvalidError creates a non-retryable payload validation error.
func NewPredictionInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionInvalid,
		Message:   "Prediction payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProjectNotEligibleError creates a non-retryable business rule error.
func NewProjectNotEligibleError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProjectNotEligible,
		Message:   "Project is not eligible for automatic assignment",
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfidenceTooLowError creates a non-retryable threshold error.
func NewConfidenceTooLowError(label string, score, threshold float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfidenceTooLow,
		Message:   "Classifier confidence below threshold",
		Details:   fmt.Sprintf("label: %s, score: %.4f, threshold: %.4f", label, score, threshold),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoVendorFoundError creates a non-retryable selection error.
func NewNoVendorFoundError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoVendorFound,
		Message:   "Ranking returned no usable vendor",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateEventError marks a source key already handled by an earlier run.
func NewDuplicateEventError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateEvent,
		Message:   "Event already processed",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalCallFailedError creates a retryable external service error.
func NewExternalCallFailedError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalCallFailed,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewExternalStatusError creates a retryable error for a non-200 response.
func NewExternalStatusError(service string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalCallFailed,
		Message:   fmt.Sprintf("External service '%s' returned status %d", service, status),
		Details:   body,
		Retryable: status >= 500,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceFailedError creates a retryable write-path error.
func NewPersistenceFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Persistence operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable token error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsBusinessOutcome reports whether the code represents a handled decision
// rather than a technical failure.
func IsBusinessOutcome(code ErrorCode) bool {
	switch code {
	case ErrCodeProjectNotFound,
		ErrCodePredictionNotFound,
		ErrCodePredictionInvalid,
		ErrCodeProjectNotEligible,
		ErrCodeConfidenceTooLow,
		ErrCodeNoVendorFound,
		ErrCodeDuplicateEvent:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PREDICTION") || strings.Contains(codeStr, "CONFIDENCE"):
		return "PREDICTION"
	case strings.Contains(codeStr, "PROJECT") || strings.Contains(codeStr, "VENDOR") || strings.Contains(codeStr, "DUPLICATE"):
		return "ASSIGNMENT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "PERSISTENCE"):
		return "DATABASE"
	case strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "AUTHENTICATION"):
		return "EXTERNAL"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
