package auctionerrors

import (
	"errors"
	"fmt"
)

// Code is the stable machine-readable error code reported to callers.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidState       Code = "INVALID_STATE"
	CodeAuctionClosed      Code = "AUCTION_CLOSED"
	CodeBelowStartingPrice Code = "BELOW_STARTING_PRICE"
	CodeBidTooLow          Code = "BID_TOO_LOW"
	CodeSelfBid            Code = "SELF_BID"
	CodeInvalidWindow      Code = "INVALID_WINDOW"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeTransient          Code = "TRANSIENT"
	CodeInternal           Code = "INTERNAL"
)

// Precondition errors: deterministic rejections, never retried.
var (
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrUnauthorized       = &Error{Code: CodeUnauthorized, Message: "caller is not an active user"}
	ErrInvalidState       = &Error{Code: CodeInvalidState, Message: "operation not allowed in current state"}
	ErrAuctionClosed      = &Error{Code: CodeAuctionClosed, Message: "auction window has closed"}
	ErrBelowStartingPrice = &Error{Code: CodeBelowStartingPrice, Message: "bid is below the starting price"}
	ErrBidTooLow          = &Error{Code: CodeBidTooLow, Message: "bid does not exceed the current highest bid"}
	ErrSelfBid            = &Error{Code: CodeSelfBid, Message: "sellers may not bid on their own items"}
	ErrInvalidWindow      = &Error{Code: CodeInvalidWindow, Message: "invalid auction window"}
)

// Error carries a code from the taxonomy plus a human message. Wrapped
// causes stay reachable through errors.Is/As.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any error of the same code, so sentinel comparisons like
// errors.Is(err, ErrBidTooLow) work on wrapped instances.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New returns a coded error with a specific message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf returns a coded error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Transient wraps a storage or network fault that is safe to retry.
func Transient(cause error) *Error {
	return &Error{Code: CodeTransient, Message: "temporary storage failure", cause: cause}
}

// Internal wraps an invariant violation. These are logged with full
// context and surfaced as 5xx.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, cause: cause}
}

// CodeOf extracts the taxonomy code from err, defaulting to INTERNAL.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsPrecondition reports whether err is a deterministic rejection that
// must not be retried.
func IsPrecondition(err error) bool {
	switch CodeOf(err) {
	case CodeNotFound, CodeUnauthorized, CodeInvalidState, CodeAuctionClosed,
		CodeBelowStartingPrice, CodeBidTooLow, CodeSelfBid, CodeInvalidWindow,
		CodeValidation:
		return true
	}
	return false
}
