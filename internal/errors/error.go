package errors

import (
	"errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryCompile Category = "compile"
	CategoryRuntime Category = "runtime"
	CategorySource  Category = "source"
	CategoryConfig  Category = "config"
	CategoryDev     Category = "dev"
	CategoryCLI     Category = "cli"
)

// Location identifies where in a template an error occurred.
type Location struct {
	File   string
	Line   int
	Column int
	// Node is a short description of the offending node, e.g. `<input v-modle="name">`.
	Node string
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	var s string
	switch {
	case l.File != "" && l.Column > 0:
		s = fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	case l.File != "" && l.Line > 0:
		s = fmt.Sprintf("%s:%d", l.File, l.Line)
	default:
		s = l.File
	}
	if l.Node != "" {
		if s != "" {
			s += " "
		}
		s += l.Node
	}
	return s
}

// BindError is a structured error with location, suggestion and documentation.
type BindError struct {
	// Code is a unique error identifier (e.g., "E020").
	Code string

	// Category is the error type (compile, runtime, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Location is where the error occurred, if known.
	Location *Location

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *BindError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a BindError with the same code.
func (e *BindError) Is(target error) bool {
	t, ok := target.(*BindError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithLocation adds a file location to the error.
func (e *BindError) WithLocation(file string, line, column int) *BindError {
	if e.Location == nil {
		e.Location = &Location{}
	}
	e.Location.File = file
	e.Location.Line = line
	e.Location.Column = column
	return e
}

// WithNode records the offending template node.
func (e *BindError) WithNode(desc string) *BindError {
	if e.Location == nil {
		e.Location = &Location{}
	}
	e.Location.Node = desc
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *BindError) WithSuggestion(s string) *BindError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *BindError) WithDetail(d string) *BindError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *BindError) Wrap(err error) *BindError {
	e.Wrapped = err
	return e
}

// New creates a BindError from a registered error code.
func New(code string) *BindError {
	template, ok := registry[code]
	if !ok {
		return &BindError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &BindError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new BindError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *BindError {
	return &BindError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a BindError.
// Errors that already are (or wrap) a BindError are returned as that BindError.
func FromError(err error, code string) *BindError {
	if err == nil {
		return nil
	}
	var be *BindError
	if errors.As(err, &be) {
		return be
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is or wraps a BindError with the given code.
func HasCode(err error, code string) bool {
	return errors.Is(err, &BindError{Code: code})
}
