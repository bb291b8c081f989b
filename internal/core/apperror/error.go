// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All accounting errors surfaced by the core use AppError so callers can
// distinguish validation, integrity and infrastructure failures.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by class
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Journal entry and ledger rule violations (422)
	CodeBusinessRule        = "BUSINESS_RULE_VIOLATION"
	CodeJournalEntryInvalid = "JOURNAL_ENTRY_INVALID"
	CodeJournalEntryLocked  = "JOURNAL_ENTRY_LOCKED"
	CodeLedgerLocked        = "LEDGER_LOCKED"
	CodePeriodClosed        = "PERIOD_CLOSED"
	CodeNotInBalance        = "TRANSACTION_NOT_IN_BALANCE"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Integrity (409)
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
	CodeIntegrity = "INTEGRITY_ERROR"
)

// AppError is the standard error type for the ledger core.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, amounts, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewJournalEntryInvalid is raised when a journal entry fails verification
// or a lifecycle transition is refused.
func NewJournalEntryInvalid(message string) *AppError {
	return NewBusinessRule(CodeJournalEntryInvalid, message)
}

// NewJournalEntryLocked is raised on any mutation attempt against an entry
// that is posted or locked.
func NewJournalEntryLocked(jeID any) *AppError {
	return &AppError{
		Code:       CodeJournalEntryLocked,
		Message:    "Journal entry is posted or locked and cannot be modified",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"journal_entry_id": jeID},
	}
}

// NewLedgerLocked creates error when writing to a locked ledger
func NewLedgerLocked(ledgerID any) *AppError {
	return &AppError{
		Code:       CodeLedgerLocked,
		Message:    "Ledger is locked",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"ledger_id": ledgerID},
	}
}

// NewPeriodClosed creates error when trying to modify closed period
func NewPeriodClosed(period string) *AppError {
	return &AppError{
		Code:       CodePeriodClosed,
		Message:    fmt.Sprintf("Period %s is closed for modifications", period),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"period": period},
	}
}

// NewNotInBalance creates error when credits and debits differ beyond tolerance
func NewNotInBalance(diff, tolerance string) *AppError {
	return &AppError{
		Code:       CodeNotInBalance,
		Message:    fmt.Sprintf("Transactions are not in balance, difference %s exceeds tolerance %s", diff, tolerance),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"diff": diff, "tolerance": tolerance},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewIntegrity creates a data integrity error (409)
func NewIntegrity(message string) *AppError {
	return &AppError{
		Code:       CodeIntegrity,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsValidation reports whether err belongs to the validation class: bad
// input or a journal entry/ledger rule that refused the operation.
func IsValidation(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	switch appErr.Code {
	case CodeValidation, CodeInvalidInput, CodeJournalEntryInvalid,
		CodeJournalEntryLocked, CodeLedgerLocked, CodePeriodClosed:
		return true
	}
	return false
}

// IsIntegrity reports whether err belongs to the integrity class.
func IsIntegrity(err error) bool {
	return HasCode(err, CodeIntegrity) || HasCode(err, CodeDuplicate)
}
