// Package apperr holds the error taxonomy shared by every domain package.
// Handlers map these kinds onto HTTP statuses; services wrap them with %w.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrAlreadyCompleted is returned when a completed task or subtask is completed again.
var ErrAlreadyCompleted = errors.New("already completed")

// ValidationError reports input that breaks an entity rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a lookup by id that matched nothing visible to the caller.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func NotFound(entity string, id fmt.Stringer) error {
	if id == nil {
		return &NotFoundError{Entity: entity}
	}
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// ConstraintViolationError reports a uniqueness or referential conflict.
type ConstraintViolationError struct {
	Constraint string
	Err        error
}

func (e *ConstraintViolationError) Error() string {
	return "constraint violation: " + e.Constraint
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

func ConstraintViolation(constraint string, err error) error {
	return &ConstraintViolationError{Constraint: constraint, Err: err}
}

// PersistenceError wraps storage failures that are not domain conflicts.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FromDB classifies a gorm error. Nil stays nil and errors that already
// belong to the taxonomy pass through untouched.
func FromDB(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsConstraintViolation(err) ||
		IsPersistence(err) || errors.Is(err, ErrAlreadyCompleted) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Entity: entity}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ConstraintViolation(entity+" already exists", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ConstraintViolation(entity+" references a missing row", err)
	}
	return &PersistenceError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConstraintViolation(err error) bool {
	var target *ConstraintViolationError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}

func IsAlreadyCompleted(err error) bool {
	return errors.Is(err, ErrAlreadyCompleted)
}
