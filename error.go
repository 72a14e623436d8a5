package gkv

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures surfaced by the storage core.
type ErrorCode int

const (
	Unknown ErrorCode = iota
	// ConfigInvalid flags an invalid or contradictory configuration,
	// detected at startup, never at runtime.
	ConfigInvalid
	// EngineOpenFailure flags an environment that cannot be opened
	// (corruption, permission, bad location).
	EngineOpenFailure
	// LockConflict flags a concurrent exclusive open of the same location.
	LockConflict
	// IllegalState flags an operation attempted on a closed or
	// not-yet-opened environment, or a transaction already resolved.
	IllegalState
	// CommitConflict flags a transaction that lost a write-write race.
	// Retryable: the caller should re-execute the whole unit of work.
	CommitConflict
	// NestedTransaction flags an attempt to begin a transaction in a
	// context that already holds an active one.
	NestedTransaction
	// StoreFailure flags an engine-level I/O or encoding failure while
	// writing or removing data.
	StoreFailure
	// ReadFailure flags an engine-level failure while reading data.
	ReadFailure
)

// gkv custom error.
type Error struct {
	Code     ErrorCode
	Err      error
	UserData any
}

func (e Error) Error() string {
	if e.UserData != nil {
		return fmt.Sprintf("error code: %d, user data: %v, details: %v", e.Code, e.UserData, e.Err)
	}
	return fmt.Sprintf("error code: %d, details: %v", e.Code, e.Err)
}

// Unwrap returns the wrapped error, preserving errors.Is/errors.As matching
// on the underlying cause.
func (e Error) Unwrap() error {
	return e.Err
}

// codeOf extracts the ErrorCode of err, or Unknown if err is not a gkv Error.
func codeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// IsCommitConflict reports whether err denotes a commit-time write conflict.
// Such errors are retryable by re-executing the transactional unit of work.
func IsCommitConflict(err error) bool {
	return err != nil && codeOf(err) == CommitConflict
}

// IsIllegalState reports whether err denotes use of a closed environment or
// an already-resolved transaction.
func IsIllegalState(err error) bool {
	return err != nil && codeOf(err) == IllegalState
}

// IsLockConflict reports whether err denotes a concurrent exclusive open of
// the same storage location.
func IsLockConflict(err error) bool {
	return err != nil && codeOf(err) == LockConflict
}

// IsConfigInvalid reports whether err denotes an invalid configuration.
func IsConfigInvalid(err error) bool {
	return err != nil && codeOf(err) == ConfigInvalid
}

// IsNestedTransaction reports whether err denotes a rejected nested begin.
func IsNestedTransaction(err error) bool {
	return err != nil && codeOf(err) == NestedTransaction
}
