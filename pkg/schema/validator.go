package schema

import (
	"context"
	"regexp"
)

// Validator describes one or more checks a field value must pass. It is a
// closed set: SyncCheck, AsyncCheck, Pattern and Sequence.
type Validator interface {
	isValidator()
}

// SyncCheck inspects a value and reports whether it is acceptable. A false
// result with an empty message fails with the field's fallback message; a
// non-empty message is surfaced as-is.
type SyncCheck func(value any, isDefault bool) (ok bool, message string)

// AsyncCheck may block (network lookups, file probes) and honours ctx. A nil
// error accepts the value; the error text becomes the failure message.
type AsyncCheck func(ctx context.Context, value any, isDefault bool) error

// Pattern accepts values whose string form matches the expression.
type Pattern struct {
	Expr *regexp.Regexp
}

// Sequence runs validators in order. Nested sequences are flattened during
// compilation.
type Sequence []Validator

func (SyncCheck) isValidator()  {}
func (AsyncCheck) isValidator() {}
func (Pattern) isValidator()    {}
func (Sequence) isValidator()   {}

// Match builds a Pattern validator from a compiled expression.
func Match(expr *regexp.Regexp) Validator {
	return Pattern{Expr: expr}
}

// MustMatch compiles expr and panics when it is invalid.
func MustMatch(expr string) Validator {
	return Pattern{Expr: regexp.MustCompile(expr)}
}

// Checks groups validators into a Sequence.
func Checks(validators ...Validator) Validator {
	return Sequence(validators)
}

// Setter describes one or more transforms applied to an accepted value. It is
// a closed set: SyncTransform, AsyncTransform and Pipeline.
type Setter interface {
	isSetter()
}

// SyncTransform maps a value to its resolved form. It cannot fail.
type SyncTransform func(value any, isDefault bool) any

// AsyncTransform maps a value to its resolved form and may fail or block.
type AsyncTransform func(ctx context.Context, value any, isDefault bool) (any, error)

// Pipeline feeds the output of each setter into the next one.
type Pipeline []Setter

func (SyncTransform) isSetter()  {}
func (AsyncTransform) isSetter() {}
func (Pipeline) isSetter()       {}

// Transforms groups setters into a Pipeline.
func Transforms(setters ...Setter) Setter {
	return Pipeline(setters)
}
