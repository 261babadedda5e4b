package compiler

import "errors"

// ErrInvalid is the generic rejection. Callers fall back to the rule's
// message when a check fails with it.
var ErrInvalid = errors.New("compiler: invalid value")

// Failure is a rejection that carries its own message. It matches ErrInvalid
// under errors.Is.
type Failure struct {
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Is reports ErrInvalid as a match.
func (f *Failure) Is(target error) bool {
	return target == ErrInvalid
}

// Reject builds a Failure with msg; an empty msg yields ErrInvalid.
func Reject(msg string) error {
	if msg == "" {
		return ErrInvalid
	}
	return &Failure{Message: msg}
}
