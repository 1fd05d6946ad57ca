package jscore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundVariable is wrapped by every *ReferenceError.
	ErrUnboundVariable = errors.New("unbound variable")

	// ErrInvalidReference is wrapped by every *InvalidReferenceError. Seeing
	// it means a handle outlived its node, which a correct host never does.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrCollectDuringCall is returned by Collect when invoked from inside a
	// function body, getter or setter.
	ErrCollectDuringCall = errors.New("collection cycle requested during evaluation")
)

// ReferenceError reports a name that resolved nowhere on the environment
// chain.
type ReferenceError struct {
	Name string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("ReferenceError: %s is not defined", e.Name)
}

func (e *ReferenceError) Unwrap() error {
	return ErrUnboundVariable
}

// InvalidReferenceError reports a dereference of a handle that was never
// allocated or has been reclaimed.
type InvalidReferenceError struct {
	ID   uint64
	Kind string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference: %s #%d", e.Kind, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidReference
}

type TypeError struct {
	Message string
}

func (e *TypeError) Error() string {
	return "TypeError: " + e.Message
}

func newTypeError(format string, args ...interface{}) *TypeError {
	return &TypeError{Message: fmt.Sprintf(format, args...)}
}

// typeErrorResult returns a TypeError when throw is set and nil otherwise,
// so that non-strict callers can drop a failed write silently.
func (r *Runtime) typeErrorResult(throw bool, format string, args ...interface{}) error {
	if throw {
		return newTypeError(format, args...)
	}
	return nil
}
