package errors

import (
	// Go Internal Packages
	goerrors "errors"
	"fmt"
)

// Kind classifies an error so callers can react without string matching.
type Kind uint8

const (
	Other Kind = iota
	Invalid
	NotFound
	Conflict
	InvalidTransition
	CapabilityNotAvailable
	RecoverableLedger
	UnrecoverableLedger
	Internal
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case InvalidTransition:
		return "invalid transition"
	case CapabilityNotAvailable:
		return "capability not available"
	case RecoverableLedger:
		return "recoverable ledger error"
	case UnrecoverableLedger:
		return "unrecoverable ledger error"
	case Internal:
		return "internal"
	}
	return "other"
}

// Error is the error type used across paygate.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error. err may be nil.
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in the chain that has one set.
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if !goerrors.As(err, &e) {
			return Other
		}
		if e.Kind != Other {
			return e.Kind
		}
		err = e.Err
	}
	return Other
}

// Is reports whether err carries the given kind.
func Is(kind Kind, err error) bool {
	return err != nil && KindOf(err) == kind
}

// New, As and Join mirror the standard library so this package can shadow it.
func New(text string) error {
	return goerrors.New(text)
}

func As(err error, target any) bool {
	return goerrors.As(err, target)
}

func IsErr(err, target error) bool {
	return goerrors.Is(err, target)
}

func Join(errs ...error) error {
	return goerrors.Join(errs...)
}
