package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Error codes shared by every ledger component
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeNotFound            = "NOT_FOUND"
	CodeStorage             = "STORAGE_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers match on the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrStorage             = NewDomainError(CodeStorage, "Storage failure")
)

// NewValidationError reports a missing or malformed field
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewAlreadyExistsError reports a uniqueness conflict
func NewAlreadyExistsError(format string, args ...any) *DomainError {
	return NewDomainError(CodeAlreadyExists, fmt.Sprintf(format, args...))
}

// NewNotFoundError reports an unknown reference
func NewNotFoundError(entity, key string) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %q not found", entity, key))
}

// NewConcurrencyError reports a failed optimistic version check
func NewConcurrencyError(entity, key string) *DomainError {
	return NewDomainError(CodeConcurrencyConflict, fmt.Sprintf("%s %q was modified by another transaction", entity, key))
}

// NewStorageError wraps a persistence failure with the operation that triggered it.
// Domain errors pass through unchanged so their code survives the repository layer.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return err
	}
	return &DomainError{
		Code:    CodeStorage,
		Message: op + " failed",
		cause:   err,
	}
}

// ErrorCode extracts the domain code from err, or CodeStorage for foreign errors
func ErrorCode(err error) string {
	var ise *InsufficientStockError
	if errors.As(err, &ise) {
		return CodeInsufficientStock
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeStorage
}

// StockShortage describes a single invoice line that cannot be satisfied
type StockShortage struct {
	LineNo       int             `json:"line_no"`
	MaterialCode string          `json:"material_code"`
	Requested    decimal.Decimal `json:"requested"`
	Available    decimal.Decimal `json:"available"`
}

// InsufficientStockError aggregates every failing line of one request
type InsufficientStockError struct {
	Shortages []StockShortage
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("line %d (%s): requested %s, available %s",
			s.LineNo, s.MaterialCode, s.Requested.String(), s.Available.String()))
	}
	return "Insufficient stock: " + strings.Join(parts, "; ")
}

// Unwrap makes errors.Is(err, ErrInsufficientStock) hold
func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// NewInsufficientStockError creates an aggregated stock error
func NewInsufficientStockError(shortages ...StockShortage) *InsufficientStockError {
	return &InsufficientStockError{Shortages: shortages}
}
