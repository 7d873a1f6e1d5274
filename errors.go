package fairlock

import "errors"

// Sentinel errors returned by construction, registration and teardown.
// Returned errors may wrap these with detail; match them with errors.Is.
var (
	// ErrInvalidHierarchy indicates the node list passed to New is not a
	// well-formed tree.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrUnknownParent indicates Register named a node that does not exist
	// or cannot have children.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrInvalidWeight indicates a non-positive weight.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrBusy indicates Close was called while the lock was held or had
	// waiters.
	ErrBusy = errors.New("lock busy")

	// ErrClosed indicates the lock was already closed.
	ErrClosed = errors.New("lock closed")
)
