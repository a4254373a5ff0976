package storage

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrEdgeNotFound  = errors.New("edge not found")
	ErrAlreadyLoaded = errors.New("store already loaded")
	ErrNotLoaded     = errors.New("store not loaded")
	ErrStoreClosed   = errors.New("store is closed")
	ErrDanglingEdge  = errors.New("edge references missing node")
)

// StoreError provides structured error information for store operations.
type StoreError struct {
	Op      string // Operation that failed (e.g., "Load", "GetNode")
	Entity  string // Entity type (e.g., "node", "edge", "snapshot")
	ID      string // Entity ID (if applicable)
	Context string // Additional context
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *StoreError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(op, nodeID string) error {
	return &StoreError{Op: op, Entity: "node", ID: nodeID, Cause: ErrNodeNotFound}
}

// EdgeNotFoundError creates an edge not found error.
func EdgeNotFoundError(op, edgeID string) error {
	return &StoreError{Op: op, Entity: "edge", ID: edgeID, Cause: ErrEdgeNotFound}
}

// SnapshotError creates a persistence error.
func SnapshotError(op, context string, cause error) error {
	return &StoreError{Op: op, Entity: "snapshot", Context: context, Cause: cause}
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrEdgeNotFound)
}
