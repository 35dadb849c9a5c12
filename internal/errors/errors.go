// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Type identifies the category of error
type Type string

const (
	// TypeValidation indicates an invalid simulation configuration
	TypeValidation Type = "INVALID_CONFIGURATION"

	// TypeInput indicates a malformed command line or flag value
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a scenario file could not be parsed
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a tool configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeNotSupported indicates an unsupported operation
	TypeNotSupported Type = "NOT_SUPPORTED"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type           `json:"type"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type.
// This lets callers match with errors.Is(err, errors.New(TypeValidation, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Problems returns the individual errors combined into the cause.
func (e *Error) Problems() []error {
	if e.Cause == nil {
		return nil
	}
	return multierr.Errors(e.Cause)
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...any) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error, or anything it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}
	return false
}

// Field describes a single invalid field. It is the unit that
// validation passes collect before combining them into one error.
type Field struct {
	Name   string
	Reason string
}

// Error implements the error interface
func (f *Field) Error() string {
	return f.Name + ": " + f.Reason
}

// InvalidField creates a field-level validation problem
func InvalidField(name, format string, args ...any) error {
	return &Field{Name: name, Reason: fmt.Sprintf(format, args...)}
}

// Validation combines collected problems into one invalid-configuration
// error. It returns nil when problems is nil.
func Validation(subject string, problems error) error {
	if problems == nil {
		return nil
	}
	e := Wrap(TypeValidation, "invalid configuration: "+subject, problems)
	if n := len(flatten(e)); n > 1 {
		e.Message = fmt.Sprintf("invalid configuration: %s (%d problems)", subject, n)
	}
	return e
}

// Fields returns the names of every invalid field reported by err.
func Fields(err error) []string {
	var names []string
	for _, p := range flatten(err) {
		var f *Field
		if stderrors.As(p, &f) {
			names = append(names, f.Name)
		}
	}
	return names
}

// Within qualifies every field problem in err with prefix, so nested
// validation reads "tiers.replies band 1 (0 - 300): ...". Problems that
// are not fields pass through unchanged.
func Within(prefix string, err error) error {
	var problems error
	for _, p := range flatten(err) {
		var f *Field
		if stderrors.As(p, &f) {
			problems = multierr.Append(problems, &Field{Name: prefix + " " + f.Name, Reason: f.Reason})
			continue
		}
		problems = multierr.Append(problems, p)
	}
	return problems
}

// Describe renders err as one problem per line, for terminal output.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	problems := flatten(err)
	var e *Error
	if len(problems) == 1 {
		if stderrors.As(err, &e) && e.Cause != nil {
			return e.Message + ": " + problems[0].Error()
		}
		return err.Error()
	}
	var b strings.Builder
	if stderrors.As(err, &e) {
		b.WriteString(e.Message)
		b.WriteString(":")
	}
	for _, p := range problems {
		b.WriteString("\n  - ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if errs := multierr.Errors(err); len(errs) > 1 {
		var out []error
		for _, p := range errs {
			out = append(out, flatten(p)...)
		}
		return out
	}
	var e *Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return flatten(e.Cause)
	}
	return []error{err}
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// NotSupported creates a not supported error
func NotSupported(operation string) *Error {
	return Newf(TypeNotSupported, "operation not supported: %s", operation)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
