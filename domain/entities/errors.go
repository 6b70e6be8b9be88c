package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies operation failures for callers that translate them
// into user-facing messages or retry decisions.
type ErrorKind string

const (
	ErrorKindNotFound          ErrorKind = "not_found"
	ErrorKindInvalidOperation  ErrorKind = "invalid_operation"
	ErrorKindInsufficientFunds ErrorKind = "insufficient_funds"
	ErrorKindUnexpected        ErrorKind = "unexpected"
)

// ErrDuplicateReference is returned by the ledger repository when an insert
// collides with an existing external_reference. It signals a recognized retry,
// not a failure; the credit engine converts it into a duplicate success result.
var ErrDuplicateReference = errors.New("external reference already recorded")

// TreatsError is the structured failure returned across the engine boundary.
// The cause carries storage-level detail for logging; the message is safe to
// surface to callers.
type TreatsError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *TreatsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *TreatsError) Unwrap() error {
	return e.cause
}

// NewNotFound creates a not_found error
func NewNotFound(format string, args ...any) *TreatsError {
	return &TreatsError{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidOperation creates an invalid_operation error
func NewInvalidOperation(format string, args ...any) *TreatsError {
	return &TreatsError{Kind: ErrorKindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFunds creates an insufficient_funds error
func NewInsufficientFunds(format string, args ...any) *TreatsError {
	return &TreatsError{Kind: ErrorKindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// NewUnexpected wraps a lower-level failure. The detail stays on the cause so
// callers can log it without surfacing storage internals.
func NewUnexpected(msg string, cause error) *TreatsError {
	return &TreatsError{Kind: ErrorKindUnexpected, Message: msg, cause: cause}
}

// KindOf extracts the error kind, defaulting to unexpected for untyped errors
func KindOf(err error) ErrorKind {
	var te *TreatsError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrorKindUnexpected
}
