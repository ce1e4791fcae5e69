// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson

import (
	"errors"
	"fmt"
)

// Error is the single error type raised by the Lexer, Reader, and Writer.
// All failure modes described in the package documentation -- lexical
// errors, parse-table misses, truncated input, and writer validation
// failures -- are reported as a *Error distinguished only by their message,
// matching the "one unified error category" design of this package.
type Error struct {
	Message string
	err     error // optional wrapped cause
}

// Error satisfies the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap supports error wrapping via errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.err }

// errorf constructs an *Error from a free-form message. A %w verb, as with
// fmt.Errorf, records its operand as the unwrappable cause.
func errorf(format string, args ...any) *Error {
	inner := fmt.Errorf(format, args...)
	return &Error{Message: inner.Error(), err: errors.Unwrap(inner)}
}

// wrapf constructs an *Error whose message embeds cause's text and whose
// Unwrap returns cause.
func wrapf(cause error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{Message: msg, err: cause}
}

// errorFromToken builds a parse-table-miss error naming the unexpected
// terminal, optionally wrapping an inner cause (e.g. a lexical error
// encountered while trying to fetch that terminal).
func errorFromToken(tok Terminal, cause error) *Error {
	if cause != nil {
		return wrapf(cause, "invalid token %s in input string", tok)
	}
	return errorf("invalid token %s in input string", tok)
}

// errorFromRune builds a lexical error naming the offending character.
func errorFromRune(ch rune) *Error {
	return errorf("invalid character %q in input", ch)
}
