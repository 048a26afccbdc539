// Package errors provides the standardized error type shared by the HTTP API,
// the workflow workers and the command-line tool.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequirement  ErrorCode = "INVALID_REQUIREMENT"
	ErrCodeInvalidVehicleSpec  ErrorCode = "INVALID_VEHICLE_SPEC"
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeParseError          ErrorCode = "PARSE_ERROR"
	ErrCodeMotorNotFound       ErrorCode = "MOTOR_NOT_FOUND"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodeCatalogLoadFailed   ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogInvalidEntry ErrorCode = "CATALOG_INVALID_ENTRY"
	ErrCodeCatalogImportFailed ErrorCode = "CATALOG_IMPORT_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeSearchUnavailable ErrorCode = "SEARCH_UNAVAILABLE"
	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeReportGenerationFailed ErrorCode = "REPORT_GENERATION_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
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
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequirementError reports a matcher precondition violation.
func NewInvalidRequirementError(details string) *StandardError {
	return newError(ErrCodeInvalidRequirement, "Invalid motor requirement", details, false)
}

// NewInvalidVehicleSpecError reports unusable speed, force or wheel input.
func NewInvalidVehicleSpecError(details string) *StandardError {
	return newError(ErrCodeInvalidVehicleSpec, "Invalid vehicle specification", details, false)
}

// NewInvalidRequestError reports a request body that failed schema validation.
func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Request validation failed", details, false)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Malformed payload", err.Error(), false)
}

func NewMotorNotFoundError(id string) *StandardError {
	return newError(ErrCodeMotorNotFound, "Motor not found in catalog", fmt.Sprintf("id: %s", id), false)
}

func NewRateLimitedError() *StandardError {
	return newError(ErrCodeRateLimited, "Too many requests", "try again later", true)
}

// NewCatalogLoadFailedError creates a retryable catalog source error.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Catalog could not be loaded",
		fmt.Sprintf("source: %s, error: %s", source, err.Error()), true)
}

// NewCatalogInvalidEntryError flags a data-authoring defect in the catalog.
func NewCatalogInvalidEntryError(id, details string) *StandardError {
	return newError(ErrCodeCatalogInvalidEntry, "Catalog entry violates invariants",
		fmt.Sprintf("id: %s, %s", id, details), false)
}

func NewCatalogImportFailedError(details string) *StandardError {
	return newError(ErrCodeCatalogImportFailed, "Catalog import failed", details, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("query: %s, error: %s", query, err.Error()), true)
}

func NewCacheUnavailableError(err error) *StandardError {
	return newError(ErrCodeCacheUnavailable, "Cache unavailable", err.Error(), true)
}

func NewSearchUnavailableError() *StandardError {
	return newError(ErrCodeSearchUnavailable, "Catalog search is not enabled", "", false)
}

func NewSearchQueryFailedError(err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Catalog search failed", err.Error(), true)
}

func NewReportGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeReportGenerationFailed, "Report generation failed", err.Error(), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Conversion
// ==========================

// As normalizes any error into a StandardError. Wrapped StandardErrors are
// unwrapped; anything else becomes INTERNAL_ERROR.
func As(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetRetryCount returns the recommended retry count for workflow jobs.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeCatalogLoadFailed,
		ErrCodeSearchQueryFailed:
		return 3

	case ErrCodeCacheUnavailable:
		return 1

	default:
		return 0 // business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
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

// HTTPStatus maps an error code to the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequirement, ErrCodeInvalidVehicleSpec, ErrCodeInvalidRequest,
		ErrCodeParseError, ErrCodeCatalogImportFailed:
		return http.StatusBadRequest
	case ErrCodeMotorNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeSearchUnavailable, ErrCodeCacheUnavailable, ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	case ErrCodeSearchQueryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
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
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_EXECUTION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
