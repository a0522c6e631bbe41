package document

import "errors"

// Errors returned by document operations.
var (
	// ErrRange indicates an offset or range outside the bounds of a block,
	// or an edit that would leave the document without blocks.
	ErrRange = errors.New("range out of bounds")

	// ErrUnknownBlock indicates a transform references a block id that is
	// not part of the document.
	ErrUnknownBlock = errors.New("unknown block")

	// ErrDuplicateBlock indicates a block id is already used in the document.
	ErrDuplicateBlock = errors.New("duplicate block id")

	// ErrCorruptState indicates serialized state failed structural validation.
	ErrCorruptState = errors.New("corrupt document state")

	// ErrInvalidTransform indicates a transform is malformed (unknown kind,
	// missing fields).
	ErrInvalidTransform = errors.New("invalid transform")
)
