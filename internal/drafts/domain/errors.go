package domain

import (
	"errors"
	"fmt"
)

var ErrDraftNotFound = errors.New("draft not found")

// PayloadError reports a submitted build that could not be decoded.
type PayloadError struct {
	Err error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid build payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// PersistError reports a failure to read or write the draft collection while
// mutating it. It is always surfaced to the caller.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("draft store %s failed: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
