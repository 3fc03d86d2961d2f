package pkg

// Sentinel errors for prun and its subpackages.
// These errors can be tested using errors.Is for reliable error checking.

import (
	"fmt"
	"slices"
	"strings"
)

// Error represents a chain of errors.
type Error []error

// ErrLoadNamespace is returned when a namespace loader fails.
//
// This error should be wrapped with the name of the namespace and the
// loader's error.
var ErrLoadNamespace = MakeErrorf("failed to load namespace")

// ErrManifest is returned when a namespace manifest cannot be decoded.
//
// This error should be wrapped with the manifest path and the decoder's
// error to preserve the error chain.
var ErrManifest = MakeErrorf("invalid namespace manifest")

// ErrReadConfig is returned when the configuration file cannot be read or
// decoded.
var ErrReadConfig = MakeErrorf("failed to read configuration")

// ErrRun is returned when the execution engine fails to run a pipeline.
//
// This error should be wrapped with the failing process and job.
var ErrRun = MakeErrorf("pipeline run failed")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil is returned if no errors are provided.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range slices.All(e) {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
// The receiver is cloned first so that package sentinels are never mutated.
func (e Error) Wrap(err ...error) Error {
	return append(slices.Clone(e), err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return append(slices.Clone(e), fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// UnwrapErrors recursively unwraps an error chain and returns a slice
// containing all errors in the chain, starting from the innermost error.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	chain := Error{}

	if e, ok := err.(interface{ Unwrap() []error }); ok {
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	} else if e, ok := err.(interface{ Unwrap() error }); ok {
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}

// Is reports whether target is an Error whose chain is a prefix of the
// receiver's chain. This lets callers match wrapped package sentinels with
// errors.Is.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 || len(t) > len(e) {
		return false
	}

	for i := range t {
		if e[i] != t[i] {
			return false
		}
	}

	return true
}
