package board

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when an operation references a task id absent
// from the store.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError reports rejected user input, such as a title that trims
// to the empty string.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// StorageError wraps a failure inside the record store. The transaction the
// failure occurred in has been rolled back; no partial updates were
// committed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
