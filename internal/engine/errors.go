package engine

import "errors"

// Errors returned by editor operations.
var (
	// ErrReadOnly indicates a mutation was attempted on a read-only editor.
	ErrReadOnly = errors.New("editor is read-only")

	// ErrNoStore indicates Save or Load was called without a configured store.
	ErrNoStore = errors.New("no store configured")

	// ErrGroupActive indicates a history operation was attempted while a
	// Group is recording.
	ErrGroupActive = errors.New("edit group in progress")
)
