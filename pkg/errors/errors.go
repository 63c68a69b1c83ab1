package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType classifies failures by the collaborator that produced them
type ErrorType string

const (
	ErrorTypeDriver  ErrorType = "driver"
	ErrorTypeAuth    ErrorType = "auth"
	ErrorTypeStorage ErrorType = "storage"
	ErrorTypeParsing ErrorType = "parsing"
	ErrorTypeUnknown ErrorType = "unknown"
)

// ErrAlreadyExists reports that a post with the same URL was persisted before.
// It is the expected outcome of the dedup race and is never treated as a failure.
var ErrAlreadyExists = stderrors.New("post already exists")

// Error carries a failure type alongside its message and optional cause
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewDriverError wraps a browser driver failure (navigation, element lookup)
func NewDriverError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeDriver, Message: message, Cause: cause}
}

// NewAuthError wraps an authentication failure, fatal for the current attempt
func NewAuthError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeAuth, Message: message, Cause: cause}
}

// NewStorageError wraps a persistence failure
func NewStorageError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeStorage, Message: message, Cause: cause}
}

// NewParsingError wraps a malformed-page failure
func NewParsingError(message string, cause error) *Error {
	return &Error{Type: ErrorTypeParsing, Message: message, Cause: cause}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for untyped errors
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given type anywhere in its chain
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsAlreadyExists reports whether err is the dedup-race sentinel
func IsAlreadyExists(err error) bool {
	return stderrors.Is(err, ErrAlreadyExists)
}

// IsRetryable reports whether a failure of this type may succeed on a later
// sweep. Auth and parsing failures will not change without operator action.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeDriver, ErrorTypeStorage:
		return true
	case ErrorTypeAuth, ErrorTypeParsing:
		return false
	default:
		return false
	}
}
