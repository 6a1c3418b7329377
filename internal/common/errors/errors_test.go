package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := NewSegmentNotFoundError(7)
	assert.Equal(t, ErrCodeSegmentNotFound, CodeOf(err))

	wrapped := fmt.Errorf("loading summary: %w", err)
	assert.Equal(t, ErrCodeSegmentNotFound, CodeOf(wrapped))

	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestCategoryPredicates(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		isValidation bool
		isLookup     bool
		isGeneration bool
	}{
		{"schema", NewSchemaValidationFailedError("missing: segment"), true, false, false},
		{"empty dataset", NewEmptyDatasetError(3), true, false, false},
		{"segment lookup", NewSegmentNotFoundError(2), false, true, false},
		{"generation failed", NewGenerationFailedError(fmt.Errorf("boom")), false, false, true},
		{"generation timeout", NewGenerationTimeoutError(), false, false, true},
		{"record source", NewRecordSourceFailedError("csv:data.csv", fmt.Errorf("no such file")), false, false, false},
		{"plain error", fmt.Errorf("plain"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValidation, IsValidation(tt.err))
			assert.Equal(t, tt.isLookup, IsLookup(tt.err))
			assert.Equal(t, tt.isGeneration, IsGeneration(tt.err))
		})
	}
}

func TestRetryability(t *testing.T) {
	assert.False(t, NewSchemaValidationFailedError("x").Retryable)
	assert.False(t, NewEmptyDatasetError(0).Retryable)
	assert.False(t, NewSegmentNotFoundError(1).Retryable)
	// A timed-out generation is answered by the fallback, not retried.
	assert.False(t, NewGenerationTimeoutError().Retryable)

	assert.True(t, NewGenerationFailedError(fmt.Errorf("x")).Retryable)
	assert.True(t, NewSessionStoreFailedError(fmt.Errorf("x")).Retryable)
	assert.True(t, NewTranscriptIndexError(fmt.Errorf("x")).Retryable)
	assert.True(t, NewAlertDeliveryFailedError("email", fmt.Errorf("x")).Retryable)

	assert.True(t, IsRetryableErrorCode(ErrCodeRecordSourceFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeEmptyDataset))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSchemaValidationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeEmptyDataset))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeSegmentNotFound))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeGenerationTimeout))
	assert.Equal(t, "INFRASTRUCTURE", GetErrorCategory(ErrCodeSessionStoreFailed))
}

func TestErrorString(t *testing.T) {
	err := NewEmptyDatasetError(5)
	assert.Equal(t, "StandardError[EMPTY_DATASET]: No valid customer records after preparation", err.Error())
	assert.Equal(t, "rejectedRows: 5", err.Details)
}
