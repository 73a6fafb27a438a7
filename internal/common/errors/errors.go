// Package errors provides standardized error handling for the lending core.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeStoreQueryFailed  ErrorCode = "STORE_QUERY_FAILED"
	ErrCodeStoreGetFailed    ErrorCode = "STORE_GET_FAILED"
	ErrCodeStorePutFailed    ErrorCode = "STORE_PUT_FAILED"
	ErrCodeStoreUpdateFailed ErrorCode = "STORE_UPDATE_FAILED"
	ErrCodeStoreDeleteFailed ErrorCode = "STORE_DELETE_FAILED"

	ErrCodeLoanNotFound              ErrorCode = "LOAN_NOT_FOUND"
	ErrCodeOfferNotFound             ErrorCode = "OFFER_NOT_FOUND"
	ErrCodeStatusPreapprovedNotFound ErrorCode = "STATUS_PREAPPROVED_NOT_FOUND"
	ErrCodeClientNotFound            ErrorCode = "CLIENT_NOT_FOUND"
	ErrCodeExternalClientNotFound    ErrorCode = "EXTERNAL_CLIENT_NOT_FOUND"

	ErrCodeIdentityRequestFailed     ErrorCode = "IDENTITY_REQUEST_FAILED"
	ErrCodeNotificationSendFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeReportingQueryFailed      ErrorCode = "REPORTING_QUERY_FAILED"
	ErrCodePayloadValidationFailed   ErrorCode = "PAYLOAD_VALIDATION_FAILED"
	ErrCodeTokenAcquisitionFailed    ErrorCode = "TOKEN_ACQUISITION_FAILED"
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
// 2. Store Error Integration
// ==========================

// StoreQueryError is raised when any page of a paginated query fails. It
// carries how much of the result set had already been fetched so the caller
// can log a useful diagnostic.
type StoreQueryError struct {
	Table        string
	Index        string
	FetchedCount int
	Partial      []map[string]interface{}
	Cause        error
}

func (e *StoreQueryError) Error() string {
	return fmt.Sprintf("store query on %s/%s failed after %d rows: %v",
		e.Table, e.Index, e.FetchedCount, e.Cause)
}

func (e *StoreQueryError) Unwrap() error {
	return e.Cause
}

// IsStoreQueryError reports whether err is (or wraps) a StoreQueryError.
func IsStoreQueryError(err error) bool {
	var sqe *StoreQueryError
	return errors.As(err, &sqe)
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "required input is missing or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now(),
	}
}

// NewNotFoundError creates a non-retryable not-found error for the given code.
func NewNotFoundError(code ErrorCode, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   "record not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now(),
	}
}

// NewIdentityRequestError creates a retryable partner identity error.
func NewIdentityRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIdentityRequestFailed,
		Message:   "external identity request failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now(),
	}
}

// NewPayloadValidationError creates a non-retryable schema validation error.
func NewPayloadValidationError(details string, metadata map[string]interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadValidationFailed,
		Message:   "request payload failed schema validation",
		Details:   details,
		Retryable: false,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
}
