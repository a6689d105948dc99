package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the requested dependency does not exist.
	ErrNotFound = errors.New("dependency not found")

	// ErrDuplicateName indicates a dependency with the same name already exists.
	ErrDuplicateName = errors.New("dependency name already exists")

	// ErrStorageUnavailable indicates the backing store cannot be reached or is not initialized.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// DuplicateNameError is returned by Create when the name is taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("dependency with name '%s' already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// Unavailable wraps a backend failure as ErrStorageUnavailable while keeping the cause.
func Unavailable(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, cause)
}

var (
	errClosed      = errors.New("store is closed")
	errIDCollision = errors.New("generated id already in use")
)
