package resolver

import (
	"fmt"

	"github.com/goliatone/go-asks/pkg/reader"
)

// CanceledError ends a field, and the batch, without retrying. It matches
// reader.ErrCanceled under errors.Is.
type CanceledError struct {
	Field string
	Err   error
}

func (e *CanceledError) Error() string {
	return fmt.Sprintf("resolver: field %q canceled", e.Field)
}

func (e *CanceledError) Unwrap() error { return e.Err }

// Is reports reader.ErrCanceled as a match.
func (e *CanceledError) Is(target error) bool {
	return target == reader.ErrCanceled
}

// ValidationError reports a rejected value. Message is the rendered text
// shown to the operator.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("resolver: field %q: invalid value", e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ReaderError wraps a non-cancellation failure of the line reader.
type ReaderError struct {
	Field string
	Err   error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("resolver: read field %q: %v", e.Field, e.Err)
}

func (e *ReaderError) Unwrap() error { return e.Err }

// SetterError wraps a failing setter stage.
type SetterError struct {
	Field string
	Stage int
	Err   error
}

func (e *SetterError) Error() string {
	return fmt.Sprintf("resolver: set field %q (stage %d): %v", e.Field, e.Stage, e.Err)
}

func (e *SetterError) Unwrap() error { return e.Err }
