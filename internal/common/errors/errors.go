// Package errors provides standardized error handling for the analytics engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors: fatal at preparation time, no partial result.
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeEmptyDataset           ErrorCode = "EMPTY_DATASET"

	// Lookup errors: recovered locally by the caller, never a crash.
	ErrCodeSegmentNotFound ErrorCode = "SEGMENT_NOT_FOUND"

	// Generation errors: always recovered by the fallback responder.
	ErrCodeGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"

	// Infrastructure errors.
	ErrCodeRecordSourceFailed   ErrorCode = "RECORD_SOURCE_FAILED"
	ErrCodeSessionStoreFailed   ErrorCode = "SESSION_STORE_FAILED"
	ErrCodeTranscriptIndexError ErrorCode = "TRANSCRIPT_INDEX_ERROR"
	ErrCodeAlertDeliveryFailed  ErrorCode = "ALERT_DELIVERY_FAILED"
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

// CodeOf extracts the error code from an error chain; empty if none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsValidation reports whether the error is a fatal preparation failure.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeSchemaValidationFailed, ErrCodeEmptyDataset:
		return true
	}
	return false
}

// IsLookup reports whether the error is an unknown-segment lookup failure.
func IsLookup(err error) bool {
	return CodeOf(err) == ErrCodeSegmentNotFound
}

// IsGeneration reports whether the error came from the generation collaborator.
func IsGeneration(err error) bool {
	switch CodeOf(err) {
	case ErrCodeGenerationFailed, ErrCodeGenerationTimeout:
		return true
	}
	return false
}

// ==========================
// Error Constructors
// ==========================

// NewSchemaValidationFailedError creates a non-retryable schema error.
func NewSchemaValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Input table is missing required fields",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyDatasetError creates a non-retryable empty-dataset error.
func NewEmptyDatasetError(rejected int) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyDataset,
		Message:   "No valid customer records after preparation",
		Details:   fmt.Sprintf("rejectedRows: %d", rejected),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSegmentNotFoundError creates a non-retryable unknown-segment error.
func NewSegmentNotFoundError(segmentID int) *StandardError {
	return &StandardError{
		Code:      ErrCodeSegmentNotFound,
		Message:   "Segment not found in dataset",
		Details:   fmt.Sprintf("segmentId: %d", segmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable generation error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Text generation request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a generation timeout error. The caller
// falls back instead of retrying, so it is marked non-retryable.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Text generation timed out",
		Details:   "generation call exceeded its deadline",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordSourceFailedError creates a retryable record-source error.
func NewRecordSourceFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordSourceFailed,
		Message:   "Failed to load customer records",
		Details:   fmt.Sprintf("source: %s, error: %s", source, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreFailedError creates a retryable session-store error.
func NewSessionStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTranscriptIndexError creates a retryable transcript-indexing error.
func NewTranscriptIndexError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTranscriptIndexError,
		Message:   "Transcript indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertDeliveryFailedError creates a retryable alert-delivery error.
func NewAlertDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertDeliveryFailed,
		Message:   "Alert delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeGenerationFailed, ErrCodeRecordSourceFailed,
		ErrCodeSessionStoreFailed, ErrCodeTranscriptIndexError,
		ErrCodeAlertDeliveryFailed:
		return true
	}
	return false
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "DATASET"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEGMENT"):
		return "LOOKUP"
	case strings.Contains(codeStr, "GENERATION"):
		return "GENERATION"
	default:
		return "INFRASTRUCTURE"
	}
}
