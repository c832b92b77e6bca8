// Package store persists conversations as one JSON record per name.
package store

import "errors"

// Sentinel errors for store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound indicates the referenced conversation does not exist.
	ErrNotFound = errors.New("conversation not found")

	// ErrDuplicateName indicates a name collision on create, rename, or
	// clone. The store is left unchanged when this is returned.
	ErrDuplicateName = errors.New("conversation already exists")
)
