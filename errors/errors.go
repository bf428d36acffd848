// Package errors provides error handling for logifact.
//
// It re-exports github.com/cockroachdb/errors so every package gets stack
// traces, wrapping and user hints from one import, and declares the
// sentinel errors the fact pipeline distinguishes:
//
//	// Non-fatal: a symbol, type or value variant the encoder cannot express
//	diag := errors.Wrapf(errors.ErrUnsupportedVariant, "type kind %s", kind)
//
//	// Fatal: the writer could not persist a fact
//	return errors.Wrapf(errors.ErrPersistence, "write %s: %v", path, err)
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Mark makes Is(err, reference) true without altering err's message or causes.
var Mark = crdb.Mark

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Sentinel errors for the fact pipeline.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrUnsupportedVariant marks a declaration, executable, variable, type
	// or value kind the encoder has no fact shape for. Never fatal.
	ErrUnsupportedVariant = New("unsupported variant")

	// ErrPersistence marks a failure to store a completed fact. Aborts the run.
	ErrPersistence = New("persistence failure")

	// ErrInvalidModel indicates a program model document that cannot be decoded
	ErrInvalidModel = New("invalid program model")

	// ErrInvalidConfig indicates configuration that failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrIncompatibleStore indicates a fact store written by an incompatible format version
	ErrIncompatibleStore = New("incompatible fact store")

	// ErrNotFound indicates the requested fact or namespace does not exist
	ErrNotFound = New("not found")
)

// IsUnsupported checks if an error is or wraps ErrUnsupportedVariant
func IsUnsupported(err error) bool {
	return err != nil && Is(err, ErrUnsupportedVariant)
}

// IsPersistence checks if an error is or wraps ErrPersistence
func IsPersistence(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewUnsupportedError creates an unsupported-variant error with a formatted message
func NewUnsupportedError(format string, args ...interface{}) error {
	return Wrapf(ErrUnsupportedVariant, format, args...)
}

// WrapPersistence marks err as a persistence failure for path.
// The original error stays reachable through errors.Is.
func WrapPersistence(err error, path string) error {
	if err == nil {
		return nil
	}
	return Wrapf(Mark(err, ErrPersistence), "failed to persist %s", path)
}

// NewInvalidModelError creates an invalid-model error with a formatted message
func NewInvalidModelError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidModel, format, args...)
}
