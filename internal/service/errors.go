package service

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrPaymentNotAllowed    = errors.New("payment can only be recorded for a delivered, unpaid order")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
)

// ValidationError is returned for input rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failed backend write. Local state is unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
