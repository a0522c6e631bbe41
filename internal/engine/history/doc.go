// Package history provides undo/redo for Inkwell documents.
//
// The history records Entries. An Entry is one undoable step: the
// transforms that were applied, their exact inverses, and the selection
// before and after the step. Key concepts:
//
// # Entries
//
// Each edit intent produces an entry for the raw edit and, when a
// shorthand rule fires, a second entry for the formatter pass. A single
// undo therefore reverts only the most recent atomic change: undoing an
// auto-formatted edit restores the text as typed, with the prefix.
//
// # History Stack
//
// The History type manages undo/redo stacks and entry grouping:
//
//	h := history.New(1000) // Max 1000 undo entries
//
//	h.Push(entry)
//
//	doc, entry, err := h.Undo(doc)
//	sel := entry.RestoreBefore(doc)
//
//	doc, entry, err = h.Redo(doc)
//	sel = entry.RestoreAfter(doc)
//
// Undo applies the inverses in reverse order, producing a new document
// version whose content equals the pre-step content. Versions never go
// backwards.
//
// # Grouping
//
// Multiple entries can be grouped as a single undo unit:
//
//	h.BeginGroup("Paste")
//	// ... multiple pushes ...
//	h.EndGroup()
//
// GroupScope wraps the same mechanism for use with defer.
//
// # Checkpoints
//
// Checkpoint records the current undo depth; RevertTo undoes back to it
// and ReplayTo redoes forward to it.
package history
