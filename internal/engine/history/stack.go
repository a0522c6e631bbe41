package history

import (
	"errors"
	"sync"

	"github.com/dshills/inkwell/internal/engine/document"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries is the undo depth used when none is given.
const DefaultMaxEntries = 1000

// History manages undo/redo state for a document.
type History struct {
	mu sync.Mutex

	undoStack []Entry
	redoStack []Entry

	// Grouping state
	grouping     bool
	groupName    string
	groupEntries []Entry

	// Configuration
	maxEntries int
}

// New creates a new history manager.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// Push adds an entry to the undo stack.
// Clears the redo stack. Empty entries are ignored.
func (h *History) Push(e Entry) {
	if e.IsEmpty() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		h.groupEntries = append(h.groupEntries, e)
		return
	}

	h.pushLocked(e)
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e Entry) {
	h.undoStack = append(h.undoStack, e)

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo reverts the last entry on doc.
// It returns the resulting document and the undone entry; the caller
// restores entry.RestoreBefore(result). On failure the entry stays on the
// undo stack and doc is returned unchanged.
func (h *History) Undo(doc *document.Document) (*document.Document, Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return doc, Entry{}, ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	nd, err := e.Undo(doc)
	if err != nil {
		return doc, Entry{}, err
	}

	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, e)
	return nd, e, nil
}

// Redo reapplies the last undone entry on doc.
// The caller restores entry.RestoreAfter(result). On failure the entry
// stays on the redo stack and doc is returned unchanged.
func (h *History) Redo(doc *document.Document) (*document.Document, Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return doc, Entry{}, ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	nd, redone, err := e.Redo(doc)
	if err != nil {
		return doc, Entry{}, err
	}

	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, redone)
	return nd, redone, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an entry group.
// Entries pushed while grouping are combined into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupEntries = nil
}

// EndGroup finishes an entry group.
// All entries since BeginGroup are combined into one entry.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}

	h.grouping = false

	if len(h.groupEntries) > 0 {
		h.pushLocked(combine(h.groupName, h.groupEntries))
	}
	h.groupEntries = nil
}

// IsGrouping returns true if currently in an entry group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupEntries = nil
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.undoStack)
}

// RedoInfo returns info about available redo operations, oldest first.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()
	return infos(h.redoStack)
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].Info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].Info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

func infos(stack []Entry) []Info {
	result := make([]Info, len(stack))
	for i, e := range stack {
		result[i] = e.Info()
	}
	return result
}
