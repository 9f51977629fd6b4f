package engine

import "fmt"

// ErrorKind classifies engine errors for transport mapping.
type ErrorKind int

const (
	// ErrorKindInternal covers unexpected failures: store outages,
	// algorithm panics surfaced as errors, anything not the caller's fault.
	ErrorKindInternal ErrorKind = iota
	// ErrorKindClient covers caller mistakes: malformed input, options out
	// of range, structural problems the caller can fix and retry.
	ErrorKindClient
	// ErrorKindNotFound covers lookups that miss: unknown algorithm ids.
	ErrorKindNotFound
)

// Error is the engine's structured error. It carries a classification
// and optional operation/component context, following the shape errors
// take throughout this codebase.
type Error struct {
	// Kind drives the HTTP status the boundary maps this error to.
	Kind ErrorKind
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	switch {
	case e.Component != "" && e.Op != "":
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	case e.Component != "":
		prefix = e.Component
	case e.Op != "":
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewClientError creates a caller-fault error with a formatted message.
func NewClientError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindClient, Message: fmt.Sprintf(format, args...)}
}

// NewNotFoundError creates a not-found error with a formatted message.
func NewNotFoundError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError creates an internal error with a formatted message.
func NewInternalError(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrorKindInternal, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal wraps an existing error as internal with additional
// context. If err is nil, WrapInternal returns nil.
func WrapInternal(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrorKindInternal, Message: message, Err: err}
}

// AsEngineError checks if an error is of type *Error. If it is, the
// typed error and true are returned; otherwise nil and false.
func AsEngineError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	if e, ok := err.(*Error); ok {
		return e, true
	}
	return nil, false
}

// KindOf classifies an arbitrary error. Errors that are not *Error are
// treated as internal.
func KindOf(err error) ErrorKind {
	if e, ok := AsEngineError(err); ok {
		return e.Kind
	}
	return ErrorKindInternal
}
