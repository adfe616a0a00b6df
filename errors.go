package lanes

import "fmt"

// Kind classifies the error taxonomy surfaced by the workflow core. It is
// deliberately independent of any particular Go error type so the
// dispatcher can map every failure onto a stable, documented vocabulary
// regardless of which package raised it.
type Kind string

const (
	// KindParse marks malformed input bytes (template, state, or request JSON).
	KindParse Kind = "parse"
	// KindSchema marks structurally valid but semantically invalid input.
	KindSchema Kind = "schema"
	// KindReference marks an id that does not resolve (unknown step, loop, task).
	KindReference Kind = "reference"
	// KindArgument marks a missing or wrong-typed tool argument.
	KindArgument Kind = "argument"
	// KindTerminal marks a mutating call attempted on a complete/failed machine.
	KindTerminal Kind = "terminal"
	// KindNotStarted marks a query made before the workflow has been started.
	KindNotStarted Kind = "not_started"
	// KindIO marks a disk read/write failure.
	KindIO Kind = "io"
)

// Error is the core error type: a Kind plus a human-readable message.
// Every package in this module (workflow, store, dispatcher) returns
// *Error so callers can branch on Kind without type-asserting against
// package-specific error structs.
type Error struct {
	Kind    Kind
	Message string
	// Subject is the offending id, path, or argument name, when the
	// failure names one (the unknown loop id for KindReference, the
	// argument name for KindArgument, the step id for KindTerminal, and
	// so on). Callers can recover it without parsing Message. Empty
	// when the failure doesn't name a particular subject.
	Subject string
	// Err is the underlying cause, if any (e.g. an *os.PathError for KindIO).
	Err error
}

// Error returns a one-line, display-ready message.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Subject != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Subject)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind with no underlying cause.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError builds an *Error of the given kind wrapping an underlying cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewSubjectError builds an *Error carrying a structured Subject alongside
// its message.
func NewSubjectError(kind Kind, message, subject string) *Error {
	return &Error{Kind: kind, Message: message, Subject: subject}
}

// WrapSubjectError is NewSubjectError with an underlying cause.
func WrapSubjectError(kind Kind, message, subject string, err error) *Error {
	return &Error{Kind: kind, Message: message, Subject: subject, Err: err}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
