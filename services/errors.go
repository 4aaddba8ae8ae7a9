package services

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrValidation marks missing or malformed caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a point operation whose row does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a uniqueness violation the caller must resolve.
	ErrConflict = errors.New("conflict")
)

// ProviderError wraps a failure from the bank-data aggregation provider.
type ProviderError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("provider %s failed: %s", e.Op, e.Detail)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// violatedCheck reports the CHECK constraint a write broke, if any.
func violatedCheck(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == checkViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
