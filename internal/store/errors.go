package store

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate value")

	// ErrConstraint is returned when a write violates a check or foreign key constraint.
	ErrConstraint = errors.New("constraint violation")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// ConstraintError carries the name of the violated constraint.
type ConstraintError struct {
	Kind       error
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Constraint
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// translate maps PostgreSQL constraint errors onto the store sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return &ConstraintError{Kind: ErrDuplicate, Constraint: pqErr.Constraint, Err: err}
	case pqForeignKeyViolation, pqCheckViolation:
		return &ConstraintError{Kind: ErrConstraint, Constraint: pqErr.Constraint, Err: err}
	default:
		return err
	}
}
