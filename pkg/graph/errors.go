package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrEmptyID     = errors.New("empty node id")
	ErrDuplicateID = errors.New("duplicate node id")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op    string // Operation that failed (e.g., "Reset")
	ID    string // Node ID (if applicable)
	Index int    // Position in the input batch, -1 if not applicable
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	switch {
	case e.ID != "" && e.Index >= 0:
		return fmt.Sprintf("%s node %q (at %d): %v", e.Op, e.ID, e.Index, e.Cause)
	case e.ID != "":
		return fmt.Sprintf("%s node %q: %v", e.Op, e.ID, e.Cause)
	case e.Index >= 0:
		return fmt.Sprintf("%s node at %d: %v", e.Op, e.Index, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}
