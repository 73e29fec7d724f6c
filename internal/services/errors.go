package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

// InvalidStateError reports an operation the entity's current state forbids,
// e.g. cancelling a cancelled order or deleting a plan still in use.
type InvalidStateError struct {
	Entity  string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

// PersistenceError wraps a datastore failure. Its message is safe to show;
// the underlying error is only reachable through Unwrap.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// translate maps datastore errors onto the service taxonomy. Typed service
// errors returned from inside a transaction pass through unchanged.
func translate(err error, op, entity string, id interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	if isServiceError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func isServiceError(err error) bool {
	var (
		ve *ValidationError
		ne *NotFoundError
		se *InsufficientStockError
		ie *InvalidStateError
		pe *PersistenceError
	)
	return errors.As(err, &ve) || errors.As(err, &ne) || errors.As(err, &se) || errors.As(err, &ie) || errors.As(err, &pe)
}
