// Package apierr classifies gateway failures so handlers can map them to
// HTTP statuses without inspecting SDK error types themselves.
package apierr

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Kind partitions errors by how they should be reported.
type Kind int

const (
	// KindValidation marks missing or malformed request parameters. These
	// are rejected before any backend call is made.
	KindValidation Kind = iota

	// KindBackend marks failures reported by the object store.
	KindBackend

	// KindProtocol marks nominally successful backend responses that omit a
	// required field. Never papered over with a default value.
	KindProtocol

	// KindConfiguration marks deployment errors such as unusable
	// credentials or endpoint settings. Fatal at startup, never retried.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBackend:
		return "backend"
	case KindProtocol:
		return "protocol"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error carries the failed operation's name alongside its classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a bad request parameter.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// Backend wraps a failure returned by the object store. When the SDK
// surfaces a typed API error, its code is included for log context.
func Backend(op string, err error) *Error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		err = fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return &Error{Kind: KindBackend, Op: op, Err: err}
}

// Protocol reports a backend response that violates the expected shape.
func Protocol(op, format string, args ...any) *Error {
	return &Error{Kind: KindProtocol, Op: op, Err: fmt.Errorf(format, args...)}
}

// Configuration wraps a client or credential construction failure.
func Configuration(op string, err error) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Err: err}
}

// KindOf extracts the classification from err, defaulting to KindBackend
// for errors that did not pass through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindBackend
}
