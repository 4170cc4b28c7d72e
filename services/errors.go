package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bsm/redislock"
	"gorm.io/gorm"
)

// Error kinds. Match with errors.Is; every *Error unwraps to one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBusinessRule      = errors.New("business rule violation")
	ErrConflict          = errors.New("conflict")
	// ErrStoreUnavailable covers timeouts, lock contention and optimistic
	// update conflicts. The caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Codes reported to clients next to the message.
const (
	CodeValidation          = "ValidationError"
	CodeCustomerNotFound    = "CustomerNotFound"
	CodeStockNotFound       = "StockNotFound"
	CodeSaleNotFound        = "SaleNotFound"
	CodeCreditNotFound      = "CreditNotFound"
	CodeDeletedSaleNotFound = "DeletedSaleNotFound"
	CodeNotFound            = "NotFound"
	CodeInsufficientStock   = "InsufficientStock"
	CodeBusinessRule        = "BusinessRuleViolation"
	CodeConflict            = "Conflict"
	CodeStoreUnavailable    = "StoreUnavailable"
)

// Error carries a client-facing code and message.
type Error struct {
	Code    string
	Message string
	kind    error
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Is lets errors.Is match both the kind and the underlying cause.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind error, code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), kind: kind}
}

func validationError(format string, args ...any) *Error {
	return newError(ErrValidation, CodeValidation, format, args...)
}

func businessRule(format string, args ...any) *Error {
	return newError(ErrBusinessRule, CodeBusinessRule, format, args...)
}

func customerNotFound(name string) *Error {
	return newError(ErrNotFound, CodeCustomerNotFound, "customer %q not found", name)
}

func stockNotFound(lot string) *Error {
	return newError(ErrNotFound, CodeStockNotFound, "stock lot %q not found", lot)
}

func saleNotFound(id string) *Error {
	return newError(ErrNotFound, CodeSaleNotFound, "sale %q not found", id)
}

func creditNotFound(id string) *Error {
	return newError(ErrNotFound, CodeCreditNotFound, "credit %q not found", id)
}

func insufficientStock(lot string, remaining int) *Error {
	return newError(ErrInsufficientStock, CodeInsufficientStock, "lot %q has no remaining bags (remaining %d)", lot, remaining)
}

func concurrentModification(what string) *Error {
	return newError(ErrStoreUnavailable, CodeStoreUnavailable, "%s was modified concurrently, retry", what)
}

// classify turns store/driver failures into the taxonomy. Errors that are
// already classified pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Code: CodeConflict, Message: op + ": record already exists", kind: ErrConflict, cause: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Code: CodeNotFound, Message: op + ": record not found", kind: ErrNotFound, cause: err}
	case errors.Is(err, redislock.ErrNotObtained):
		return &Error{Code: CodeStoreUnavailable, Message: op + ": resource busy, retry", kind: ErrStoreUnavailable, cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Code: CodeStoreUnavailable, Message: op + ": timed out, retry", kind: ErrStoreUnavailable, cause: err}
	}
	return &Error{Code: CodeStoreUnavailable, Message: op + ": store failure", kind: ErrStoreUnavailable, cause: err}
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrBusinessRule)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// CodeOf returns the client code of err, or "" when it is not classified.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
