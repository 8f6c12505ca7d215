// Package errors provides the error taxonomy shared by the reader packages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a book, version or provider was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransport indicates a database or network fetch failed
	ErrTransport = errors.New("transport failure")
	// ErrEmptyResult indicates normalization produced zero records
	ErrEmptyResult = errors.New("empty result")
	// ErrUnsupported indicates an unsupported source or provider shape
	ErrUnsupported = errors.New("unsupported")
)

// NotFoundError represents a lookup miss with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "book", "version", "provider")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// ValidationError represents an input validation error with context.
// Its Message is safe to show to a reader verbatim.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// TransportError represents a failed database query or remote fetch.
// It is never retried.
type TransportError struct {
	Operation string // Operation being performed (e.g., "search", "chapter")
	Source    string // "db" or the provider name
	Err       error  // Underlying error
}

func (e *TransportError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s via %s failed: %v", e.Operation, e.Source, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Is reports ErrTransport for every TransportError so callers can classify
// without unwrapping to the cause.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError represents a provider payload that could not be decoded
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "HTML")
	Source  string // Provider name, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("failed to parse %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or source
type UnsupportedError struct {
	Feature string // Feature or source that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// MappingError collects records dropped during normalization because their
// book reference could not be resolved. It accompanies partial results and
// is only returned when the caller asked for drops to be reported.
type MappingError struct {
	Dropped []*NotFoundError
}

func (e *MappingError) Error() string {
	ids := make([]string, 0, len(e.Dropped))
	for _, d := range e.Dropped {
		ids = append(ids, d.ID)
	}
	return fmt.Sprintf("%d result(s) dropped, unresolved books: %s", len(e.Dropped), strings.Join(ids, ", "))
}

func (e *MappingError) Unwrap() error {
	return ErrNotFound
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewValidation creates a ValidationError
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewTransport creates a TransportError. If err is nil, returns nil.
func NewTransport(operation, source string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{
		Operation: operation,
		Source:    source,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, source, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Source:  source,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
