package services

import (
	"errors"
	"fmt"

	"cityguide/internal/identity"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateEngagement is a repeat view inside the dedup window or a
	// unique-constraint hit on a ledger insert. Callers treat it as success.
	ErrDuplicateEngagement = errors.New("duplicate engagement")

	ErrPostNotFound = errors.New("post not found")
)

// StorageError is any other database or network failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// translateError maps gorm and driver errors onto the ledger taxonomy.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicateEngagement), errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEngagement
	case errors.Is(err, ErrPostNotFound), errors.Is(err, gorm.ErrForeignKeyViolated), errors.Is(err, gorm.ErrRecordNotFound):
		return ErrPostNotFound
	case errors.Is(err, identity.ErrUnavailable):
		return err
	default:
		return &StorageError{Op: op, Err: err}
	}
}
