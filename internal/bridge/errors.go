// Package bridge holds the vocabulary shared by every orchestrator loop:
// the event types the Ethereum oracle observes, the error taxonomy that
// decides whether a failure is retried or fatal, and the identity and
// connection handles the loops are built from.
package bridge

import (
	"errors"
	"fmt"
)

// ValidationError marks a bug-class condition that is still worth retrying
// next iteration: a parse failure, a nonce stall, an inconsistent RPC
// reply. Logged at warn, never terminates the process.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// RPCError marks a transport/connectivity failure from either chain.
// Treated identically to ValidationError for control flow; kept distinct
// only so callers can tell the two apart for telemetry.
type RPCError struct {
	msg string
	err error
}

func NewRPCError(err error, format string, args ...any) *RPCError {
	return &RPCError{msg: fmt.Sprintf(format, args...), err: err}
}

func (e *RPCError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *RPCError) Unwrap() error { return e.err }

// UnrecoverableError marks identity misconfiguration, missing delegate
// registration, insufficient balances, bad configuration, or a
// chain-too-young condition. Logged at error with a remediation message
// and terminates the process.
type UnrecoverableError struct {
	msg string
}

func NewUnrecoverableError(format string, args ...any) *UnrecoverableError {
	return &UnrecoverableError{msg: fmt.Sprintf(format, args...)}
}

func (e *UnrecoverableError) Error() string { return e.msg }

// IsUnrecoverable reports whether err (or anything it wraps) is an
// UnrecoverableError. The supervisor uses this to decide whether to
// terminate the process.
func IsUnrecoverable(err error) bool {
	var u *UnrecoverableError
	return errors.As(err, &u)
}

// IsValidation reports whether err (or anything it wraps) is a
// ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRPC reports whether err (or anything it wraps) is an RPCError.
func IsRPC(err error) bool {
	var r *RPCError
	return errors.As(err, &r)
}

// Recoverable reports whether err should be retried next iteration rather
// than terminate the loop. Every error that isn't explicitly
// UnrecoverableError is treated as recoverable, matching spec.md §7:
// "Runtime errors never terminate the process unless explicitly
// classified unrecoverable."
func Recoverable(err error) bool {
	return err != nil && !IsUnrecoverable(err)
}
