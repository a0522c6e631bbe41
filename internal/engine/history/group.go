package history

import "github.com/dshills/inkwell/internal/engine/document"

// GroupScope provides a convenient way to group entries using defer.
// Usage:
//
//	func pasteLines(h *History, lines []string) {
//	    defer h.GroupScope("Paste").End()
//	    // ... multiple pushes ...
//	}
type GroupScope struct {
	history *History
	active  bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (h *History) GroupScope(name string) *GroupScope {
	h.BeginGroup(name)
	return &GroupScope{
		history: h,
		active:  true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.history.EndGroup()
		g.active = false
	}
}

// Checkpoint represents a point in history that can be returned to.
type Checkpoint struct {
	undoDepth int
}

// Checkpoint creates a checkpoint at the current history position.
func (h *History) Checkpoint() Checkpoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Checkpoint{undoDepth: len(h.undoStack)}
}

// RevertTo undoes all entries recorded since the checkpoint.
// It returns the resulting document and the last entry undone, whose
// Before selection is the selection at the checkpoint. The zero Entry is
// returned when there was nothing to undo.
func (h *History) RevertTo(cp Checkpoint, doc *document.Document) (*document.Document, Entry, error) {
	var last Entry
	for h.UndoCount() > cp.undoDepth {
		nd, e, err := h.Undo(doc)
		if err != nil {
			return doc, last, err
		}
		doc, last = nd, e
	}
	return doc, last, nil
}

// ReplayTo redoes entries up to the checkpoint depth.
// Note: This only works if the redo stack has the entries.
func (h *History) ReplayTo(cp Checkpoint, doc *document.Document) (*document.Document, Entry, error) {
	var last Entry
	for h.UndoCount() < cp.undoDepth && h.CanRedo() {
		nd, e, err := h.Redo(doc)
		if err != nil {
			return doc, last, err
		}
		doc, last = nd, e
	}
	return doc, last, nil
}
