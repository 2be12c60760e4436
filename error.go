package mcpbridge

import (
	"fmt"
)

// ErrorKind describes the stage of a bridged exchange at which an error
// occurred.
type ErrorKind int

const (
	// ParseErrorKind indicates that an input line is not valid JSON. No HTTP
	// request is made for such a line.
	ParseErrorKind ErrorKind = iota + 1

	// TransportErrorKind indicates that the HTTP exchange could not be
	// completed, for example because the connection was refused or reset, or
	// the request timed out.
	TransportErrorKind

	// DecodeErrorKind indicates that the HTTP response body is neither a JSON
	// document nor a server-sent event carrying one.
	DecodeErrorKind
)

// String returns a brief description of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ParseErrorKind:
		return "parse error"
	case TransportErrorKind:
		return "transport error"
	case DecodeErrorKind:
		return "decode error"
	default:
		return "unknown error"
	}
}

// Error is a Go error that describes a failure to bridge a single message.
type Error struct {
	kind    ErrorKind
	message string
	cause   error
}

// newError returns a new Error of the given kind.
//
// The options are applied in order.
func newError(kind ErrorKind, options []ErrorOption) *Error {
	e := &Error{
		kind: kind,
	}

	for _, opt := range options {
		opt(e)
	}

	return e
}

// ParseError returns an error that indicates an input line could not be
// parsed as JSON.
func ParseError(options ...ErrorOption) *Error {
	return newError(ParseErrorKind, options)
}

// TransportError returns an error that indicates the HTTP exchange could not
// be completed.
func TransportError(options ...ErrorOption) *Error {
	return newError(TransportErrorKind, options)
}

// DecodeError returns an error that indicates the HTTP response body could not
// be decoded.
func DecodeError(options ...ErrorOption) *Error {
	return newError(DecodeErrorKind, options)
}

// Kind returns the kind of the error.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// Code returns the JSON-RPC error code used to report the error.
func (e *Error) Code() ErrorCode {
	return InternalErrorCode
}

// Message returns the error message.
//
// It is the value of the "message" field of the error envelope produced for
// this error.
func (e *Error) Message() string {
	if e.message != "" {
		return e.message
	}

	return e.kind.String()
}

// Error returns the error message.
func (e *Error) Error() string {
	return describeError(e.Code(), e.Message())
}

// Unwrap returns the cause of e, if known.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorOption is an option that provides further information about an error.
type ErrorOption func(*Error)

// WithCause is an ErrorOption that associates a causal error with an Error.
//
// c is wrapped by the resulting error, such as it can be used with errors.Is()
// and errors.As().
//
// If the error does not already have a message, c.Error() is used as the
// message.
func WithCause(c error) ErrorOption {
	return func(e *Error) {
		e.cause = c

		if e.message == "" {
			e.message = c.Error()
		}
	}
}

// WithMessage is an ErrorOption that provides a message for an error.
func WithMessage(format string, values ...any) ErrorOption {
	return func(e *Error) {
		e.message = fmt.Sprintf(format, values...)
	}
}
