// Package errors provides error handling for jabsc.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context
//	if err := collect(dir); err != nil {
//	    return errors.Wrapf(err, "failed to collect sources from %s", dir)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "check the directory permissions")
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
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Common sentinel errors for use across jabsc.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrInvalidConfig indicates a configuration value failed validation
	ErrInvalidConfig = New("invalid configuration")

	// ErrOutOfDate indicates generated sources no longer match a fresh translation
	ErrOutOfDate = New("generated sources are out of date")
)

// NewInvalidConfigError creates an invalid-config error with a formatted message
func NewInvalidConfigError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}

// IsInvalidConfigError checks if an error is or wraps ErrInvalidConfig
func IsInvalidConfigError(err error) bool {
	return err != nil && Is(err, ErrInvalidConfig)
}
