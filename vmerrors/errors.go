// Package vmerrors enumerates the typed error kinds of spec.md §7. The
// teacher expresses VM failures as a handful of sentinel errors
// (OutOfGasError, CodeStoreOutOfGasError in core/vm/vm.go) plus ad hoc
// fmt.Errorf for validation failures; this package generalizes that into one
// Kind per spec.md §7 so every failure carries enough context (contract id,
// wrapped cause) to attribute blame at the top-level caller, as spec.md §7
// requires.
package vmerrors

import (
	"errors"
	"fmt"

	"github.com/dusk-network/rusk-vm/common"
)

// Kind identifies one of the error categories of spec.md §7.
type Kind int

const (
	_ Kind = iota
	ContractPanic
	OutOfGas
	UnknownContract
	InvalidWASMModule
	InvalidUtf8
	InvalidData
	PersistenceError
	EngineTrap
	InstrumentationError
	ConfigurationError
)

func (k Kind) String() string {
	switch k {
	case ContractPanic:
		return "ContractPanic"
	case OutOfGas:
		return "OutOfGas"
	case UnknownContract:
		return "UnknownContract"
	case InvalidWASMModule:
		return "InvalidWASMModule"
	case InvalidUtf8:
		return "InvalidUtf8"
	case InvalidData:
		return "InvalidData"
	case PersistenceError:
		return "PersistenceError"
	case EngineTrap:
		return "EngineTrap"
	case InstrumentationError:
		return "InstrumentationError"
	case ConfigurationError:
		return "ConfigurationError"
	default:
		return "UnknownError"
	}
}

// Error is the single typed error value the top-level caller sees
// (spec.md §7: "the top-level caller sees one typed error with enough
// context ... to attribute blame").
type Error struct {
	Kind       Kind
	ContractID common.ContractID
	HasID      bool
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.HasID {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s (contract %s): %v", e.Kind, e.Message, e.ContractID.Hex(), e.Cause)
		}
		return fmt.Sprintf("%s: %s (contract %s)", e.Kind, e.Message, e.ContractID.Hex())
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error without contract context.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithID attaches the offending contract id, per spec.md §7's blame
// attribution requirement.
func WithID(kind Kind, id common.ContractID, message string, cause error) *Error {
	return &Error{Kind: kind, ContractID: id, HasID: true, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// necessary. Mirrors the standard errors.Is convention.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err if it is a *Error, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
