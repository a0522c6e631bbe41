package engine

import (
	"log/slog"

	"github.com/dshills/inkwell/internal/codec"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/shorthand"
	"github.com/dshills/inkwell/internal/storage"
)

// Default configuration values.
const (
	DefaultMaxUndoEntries = history.DefaultMaxEntries
	DefaultStoreKey       = "draftContent"
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithDocument sets the initial document.
func WithDocument(doc *document.Document) Option {
	return func(e *Editor) {
		if doc != nil {
			e.doc = doc
		}
	}
}

// WithRules replaces the default shorthand rule table.
func WithRules(rules []shorthand.Rule) Option {
	return func(e *Editor) {
		e.rules = rules
	}
}

// WithPlacement sets where the cursor lands after a shorthand rule fires.
func WithPlacement(p shorthand.Placement) Option {
	return func(e *Editor) {
		e.placement = p
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Editor) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithChangeLogSize sets the change log size of documents the editor
// creates (the initial empty document and reloaded documents).
func WithChangeLogSize(size int) Option {
	return func(e *Editor) {
		if size > 0 {
			e.changeLogSize = size
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStore sets the store and key used by Save and Load.
// An empty key selects DefaultStoreKey.
func WithStore(s storage.Store, key string) Option {
	return func(e *Editor) {
		e.store = s
		if key != "" {
			e.key = key
		}
	}
}

// WithFormat sets the serialization format Save writes.
// Load accepts every supported format regardless.
func WithFormat(f codec.Format) Option {
	return func(e *Editor) {
		e.format = f
	}
}

// WithIDGenerator sets the function that names new blocks.
func WithIDGenerator(fn func() document.BlockID) Option {
	return func(e *Editor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// WithReadOnly creates a read-only editor.
// Mutating operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(e *Editor) {
		e.readOnly = true
	}
}
