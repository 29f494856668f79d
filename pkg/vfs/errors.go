package vfs

import (
	"errors"
	"fmt"
)

// Error represents a domain error from VFS operations.
//
// These are the only failures visible across the VFS boundary. Drivers and
// backing stores return *Error directly (or wrap one with %w); the router
// translates anything else into CodeInternal so that callers never see a raw
// backend failure.
//
// Error messages never contain stored values. Validation failures for the
// vault namespace in particular report only the path and the rule that was
// violated, never the rejected payload.
type Error struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable error description.
	Message string

	// Path is the logical path related to the error (if applicable).
	Path string

	// cause is the underlying error, if any. Kept unexported so that it
	// never leaks into Message; reachable via errors.Unwrap for logging.
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a *Error with the same code. This lets
// callers match on category with errors.Is(err, &vfs.Error{Code: ...})
// or, more commonly, via the exported sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrorCode represents the category of a VFS error.
//
// The categories are deliberately HTTP-shaped: the logical address space is
// exposed through request/response transports upstream, and keeping the
// taxonomy aligned avoids a translation table at that boundary.
type ErrorCode int

const (
	// CodeBadRequest indicates malformed input: an empty path, an embedded
	// NUL byte, or a missing required value. Never retried.
	CodeBadRequest ErrorCode = iota

	// CodeNotFound indicates the requested key or resource does not exist.
	// Callers decide whether absence is recoverable.
	CodeNotFound

	// CodeForbidden indicates the operation is disallowed by a driver's
	// capability descriptor or by a namespace rule (e.g. any write under
	// proc). Never retried.
	CodeForbidden

	// CodeUnprocessable indicates the value violates a namespace-specific
	// format rule (vault requires the ciphertext marker; sys forbids line
	// breaks). The core never coerces the value into shape.
	CodeUnprocessable

	// CodeBadGateway indicates an underlying fetch failed: network error or
	// a remote non-success status. Distinct from CodeNotFound, which means
	// the address space simply has no such entry.
	CodeBadGateway

	// CodeGatewayTimeout indicates a bounded fetch exceeded its deadline.
	// Reported as its own category, never folded into CodeNotFound.
	CodeGatewayTimeout

	// CodeInternal indicates a driver-internal or backing-store failure
	// unrelated to input validity.
	CodeInternal
)

// String returns the canonical wire name of the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeBadRequest:
		return "BAD_REQUEST"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeForbidden:
		return "FORBIDDEN"
	case CodeUnprocessable:
		return "UNPROCESSABLE_ENTITY"
	case CodeBadGateway:
		return "BAD_GATEWAY"
	case CodeGatewayTimeout:
		return "GATEWAY_TIMEOUT"
	case CodeInternal:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sentinel values for errors.Is matching. Only the Code field participates
// in comparison (see Error.Is), so these carry no message.
var (
	ErrBadRequest     = &Error{Code: CodeBadRequest}
	ErrNotFound       = &Error{Code: CodeNotFound}
	ErrForbidden      = &Error{Code: CodeForbidden}
	ErrUnprocessable  = &Error{Code: CodeUnprocessable}
	ErrBadGateway     = &Error{Code: CodeBadGateway}
	ErrGatewayTimeout = &Error{Code: CodeGatewayTimeout}
	ErrInternal       = &Error{Code: CodeInternal}
)

// ============================================================================
// Constructors
// ============================================================================

// BadRequestf builds a CodeBadRequest error for the given path.
func BadRequestf(path, format string, args ...any) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...), Path: path}
}

// NotFound builds a CodeNotFound error for the given path.
func NotFound(path string) *Error {
	return &Error{Code: CodeNotFound, Message: "not found", Path: path}
}

// Forbiddenf builds a CodeForbidden error for the given path.
func Forbiddenf(path, format string, args ...any) *Error {
	return &Error{Code: CodeForbidden, Message: fmt.Sprintf(format, args...), Path: path}
}

// Unprocessablef builds a CodeUnprocessable error for the given path.
func Unprocessablef(path, format string, args ...any) *Error {
	return &Error{Code: CodeUnprocessable, Message: fmt.Sprintf(format, args...), Path: path}
}

// BadGateway builds a CodeBadGateway error wrapping the fetch failure.
func BadGateway(path string, cause error) *Error {
	return &Error{Code: CodeBadGateway, Message: "fetch failed", Path: path, cause: cause}
}

// GatewayTimeout builds a CodeGatewayTimeout error wrapping the deadline
// failure.
func GatewayTimeout(path string, cause error) *Error {
	return &Error{Code: CodeGatewayTimeout, Message: "fetch timed out", Path: path, cause: cause}
}

// Internal builds a CodeInternal error wrapping a backend failure.
func Internal(path string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Path: path, cause: cause}
}

// CodeOf extracts the ErrorCode from err, walking wrap chains. Errors that
// are not *Error classify as CodeInternal: by the time an error crosses the
// VFS boundary it must belong to the taxonomy.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Normalize returns err unchanged when it already belongs to the taxonomy,
// and otherwise wraps it as CodeInternal for the given path. The router
// applies this to every driver return so raw backend errors never escape.
func Normalize(path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(path, err)
}
