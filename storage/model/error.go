package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// store
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError is an error signaling a user-correctable uniqueness
// conflict, e.g. a duplicate username on creation. The route layer maps it
// to a 4xx response, distinct from infrastructure failures.
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// CorruptStoreError signals that the persisted store content could not be
// parsed. It is an infrastructure fault and propagates to the caller;
// it is never swallowed or retried.
type CorruptStoreError string

// Error implements the error interface
func (e CorruptStoreError) Error() string {
	return string(e)
}

// CorruptStoreErrorFmt returns a CorruptStoreError from the passed format string and parameters
func CorruptStoreErrorFmt(format string, params ...any) CorruptStoreError {
	return CorruptStoreError(fmt.Sprintf(format, params...))
}
