package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs(t *testing.T) {
	assert.Nil(t, As(nil))

	notFound := NewMotorNotFoundError("37d-12v-50")
	wrapped := fmt.Errorf("lookup: %w", notFound)
	assert.Same(t, notFound, As(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeMotorNotFound))
	assert.False(t, HasCode(wrapped, ErrCodeInternal))

	plain := As(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantRetries int
	}{
		{
			name:        "business error is thrown",
			err:         NewInvalidRequirementError("rpm must be positive"),
			wantRetries: 0,
		},
		{
			name:        "catalog load failure is retried",
			err:         NewCatalogLoadFailedError("postgres", fmt.Errorf("connection refused")),
			wantRetries: 3,
		},
		{
			name:        "cache outage gets one retry",
			err:         NewCacheUnavailableError(fmt.Errorf("dial tcp")),
			wantRetries: 1,
		},
		{
			name:        "non-retryable error with retryable code",
			err:         &StandardError{Code: ErrCodeQueryExecutionFailed, Message: "bad query"},
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, string(tt.err.Code), bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Contains(t, vars, "timestamp")
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := map[ErrorCode]int{
		ErrCodeInvalidRequirement:       http.StatusBadRequest,
		ErrCodeInvalidVehicleSpec:       http.StatusBadRequest,
		ErrCodeParseError:               http.StatusBadRequest,
		ErrCodeMotorNotFound:            http.StatusNotFound,
		ErrCodeRateLimited:              http.StatusTooManyRequests,
		ErrCodeSearchUnavailable:        http.StatusServiceUnavailable,
		ErrCodeDatabaseConnectionFailed: http.StatusServiceUnavailable,
		ErrCodeSearchQueryFailed:        http.StatusBadGateway,
		ErrCodeReportGenerationFailed:   http.StatusInternalServerError,
		ErrCodeInternal:                 http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeCatalogInvalidEntry:      "CATALOG",
		ErrCodeDatabaseConnectionFailed: "DATABASE",
		ErrCodeQueryExecutionFailed:     "DATABASE",
		ErrCodeSearchQueryFailed:        "SEARCH",
		ErrCodeCacheUnavailable:         "CACHE",
		ErrCodeInvalidRequirement:       "VALIDATION",
		ErrCodeParseError:               "VALIDATION",
		ErrCodeMotorNotFound:            "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), code)
	}
}

func TestWithMetadata(t *testing.T) {
	err := NewInvalidRequestError("requiredRpm: must be greater than 0").
		WithMetadata("violations", 1)
	require.NotNil(t, err.Metadata)
	assert.Equal(t, 1, err.Metadata["violations"])
	assert.Equal(t, "INVALID_REQUEST: Request validation failed (requiredRpm: must be greater than 0)", err.Error())
}
