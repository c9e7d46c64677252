// Package failure classifies the errors a batch evaluation can surface.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies how an error should be handled by callers.
type Kind int

const (
	// Config errors abort a run before any question is processed.
	Config Kind = iota + 1
	// Parse errors are recovered by skipping the offending unit.
	Parse
	// Transport errors are recorded as a per-question failure.
	Transport
	// Interrupt marks a run cancelled by the user.
	Interrupt
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Parse:
		return "parse"
	case Transport:
		return "transport"
	case Interrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return e.Op
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds an Error from a message.
func New(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(message)}
}

// Wrap attaches a kind to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost Kind found in err's chain.
func KindOf(err error) (Kind, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}
