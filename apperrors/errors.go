// Package apperrors holds the error taxonomy shared by the sale and shift engines.
package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCheckoutInProgress = errors.New("a confirmation is already in progress for this cart")
	ErrShiftNotOpen       = errors.New("no cash shift is open")
	ErrShiftAlreadyOpen   = errors.New("a cash shift is already open")
	ErrLineNotFound       = errors.New("cart line not found")
	ErrNotFound           = errors.New("record not found")
)

// ValidationError is raised before any I/O happens.
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

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError means a write the caller depends on did not happen.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ReconciliationError means shift aggregates could not be loaded.
type ReconciliationError struct {
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("cannot reconcile shift: %v", e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// StockFailure describes one decrement that did not reach the catalog store.
type StockFailure struct {
	Kind     string          `json:"kind"`
	TargetID string          `json:"target_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason"`
}

// InventoryWarning travels with a successful sale whose stock update was incomplete.
type InventoryWarning struct {
	Failures []StockFailure `json:"failures"`
}

func (w *InventoryWarning) Error() string {
	parts := make([]string, 0, len(w.Failures))
	for _, f := range w.Failures {
		parts = append(parts, fmt.Sprintf("%s %s: %s", f.Kind, f.TargetID, f.Reason))
	}
	return "sale saved, but stock could not be fully updated: " + strings.Join(parts, "; ")
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
