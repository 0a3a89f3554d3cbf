// Package apperrors defines the error vocabulary shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrOracleNotConfigured = errors.New("oracle is not configured")
	ErrUnsupportedFile     = errors.New("unsupported file type")
	ErrTooLarge            = errors.New("file too large")
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindParse            Kind = "parse"
	KindColumnNotFound   Kind = "column_not_found"
	KindInsufficientData Kind = "insufficient_data"
	KindExecution        Kind = "execution"
	KindOracle           Kind = "oracle"
)

// Error is a pipeline failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Column is the exact term that failed to resolve (KindColumnNotFound only).
	Column string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage is the text shown to the end user.
func (e *Error) UserMessage() string {
	return e.Message
}

// New creates a kinded error.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Newf creates a kinded error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ColumnNotFound reports a column reference that matches nothing in the table.
func ColumnNotFound(term string) *Error {
	return &Error{
		Kind:    KindColumnNotFound,
		Message: fmt.Sprintf("I'm sorry, I couldn't find a column in your file that matches '%s'.", term),
		Column:  term,
	}
}

// NotConfigured reports a missing oracle credential.
func NotConfigured() *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: "The AI service is not configured. Set ORACLE_API_KEY and try again.",
		Cause:   ErrOracleNotConfigured,
	}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// UserMessage returns the user-facing text for any error.
func UserMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return fmt.Sprintf("An error occurred: %v", err)
}
