// Package errors provides standardized error handling for the match engine.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Record store errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeMatchUpsertFailed        ErrorCode = "MATCH_UPSERT_FAILED"

	// Entity / input errors
	ErrCodeCandidateNotFound    ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeCounterpartyNotFound ErrorCode = "COUNTERPARTY_NOT_FOUND"
	ErrCodeMissingEmbedding     ErrorCode = "MISSING_EMBEDDING"
	ErrCodeInvalidJobPayload    ErrorCode = "INVALID_JOB_PAYLOAD"
	ErrCodeRulesetInvalid       ErrorCode = "RULESET_INVALID"

	// External collaborator errors
	ErrCodeSimilarityServiceFailed  ErrorCode = "SIMILARITY_SERVICE_FAILED"
	ErrCodeSimilarityTimeout        ErrorCode = "SIMILARITY_TIMEOUT"
	ErrCodeNotificationPublishError ErrorCode = "NOTIFICATION_PUBLISH_FAILED"

	// Queue lifecycle errors
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// Analysis errors
	ErrCodeEmptyPopulation ErrorCode = "EMPTY_POPULATION"
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

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMatchUpsertFailedError creates a retryable upsert error.
func NewMatchUpsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMatchUpsertFailed,
		Message:   "Match upsert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCandidateNotFoundError creates a non-retryable missing candidate error.
func NewCandidateNotFoundError(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Message:   "Candidate not found in record store",
		Details:   fmt.Sprintf("candidateId: %s", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCounterpartyNotFoundError creates a non-retryable missing counterparty error.
func NewCounterpartyNotFoundError(counterpartyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCounterpartyNotFound,
		Message:   "Counterparty not found in record store",
		Details:   fmt.Sprintf("counterpartyId: %s", counterpartyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingEmbeddingError creates a non-retryable missing embedding error.
// Scoring degrades to a neutral similarity instead of failing the job.
func NewMissingEmbeddingError(entityID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingEmbedding,
		Message:   "No embedding vector available",
		Details:   fmt.Sprintf("entityId: %s", entityID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidJobPayloadError creates a non-retryable payload error.
func NewInvalidJobPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobPayload,
		Message:   "Queue job payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRulesetInvalidError creates a non-retryable ruleset error.
func NewRulesetInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRulesetInvalid,
		Message:   "Scoring ruleset validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSimilarityServiceFailedError creates a retryable similarity service error.
func NewSimilarityServiceFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSimilarityServiceFailed,
		Message:   "Similarity service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSimilarityTimeoutError creates a retryable similarity timeout error.
func NewSimilarityTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSimilarityTimeout,
		Message:   "Similarity service timeout",
		Details:   "call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationPublishError creates a retryable notification publish error.
func NewNotificationPublishError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationPublishError,
		Message:   "Notification event publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRetryExhaustedError creates a terminal retry-exhausted error.
func NewRetryExhaustedError(jobID string, attempts int, lastErr string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRetryExhausted,
		Message:   "Job retries exhausted",
		Details:   fmt.Sprintf("jobId: %s, attempts: %d, lastError: %s", jobID, attempts, lastErr),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyPopulationError creates a non-retryable analysis input error.
func NewEmptyPopulationError(window string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyPopulation,
		Message:   "No matches in analysis window",
		Details:   fmt.Sprintf("window: %s", window),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns how many retries a given error code deserves.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeMatchUpsertFailed:
		return 3
	case ErrCodeQueryTimeout,
		ErrCodeSimilarityServiceFailed,
		ErrCodeSimilarityTimeout:
		return 2
	case ErrCodeNotificationPublishError:
		return 1
	default:
		return 0
	}
}

// GetErrorCategory groups error codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout, ErrCodeMatchUpsertFailed:
		return "database"
	case ErrCodeSimilarityServiceFailed, ErrCodeSimilarityTimeout:
		return "similarity"
	case ErrCodeNotificationPublishError:
		return "notification"
	case ErrCodeCandidateNotFound, ErrCodeCounterpartyNotFound,
		ErrCodeMissingEmbedding, ErrCodeInvalidJobPayload, ErrCodeRulesetInvalid:
		return "input"
	case ErrCodeRetryExhausted:
		return "terminal"
	case ErrCodeEmptyPopulation:
		return "analysis"
	default:
		return "internal"
	}
}

// IsRetryable reports whether an error should be retried by the queue.
// Unknown error types are treated as non-retryable.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}
