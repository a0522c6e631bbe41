package history

import (
	"fmt"
	"slices"
	"time"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Entry is a single undoable step.
type Entry struct {
	Label      string               // Human-readable description
	Transforms []document.Transform // Applied transforms, in order
	Inverses   []document.Transform // Inverse of each transform, in application order
	Before     selection.Selection  // Selection before the step
	After      selection.Selection  // Selection after the step
	Timestamp  time.Time            // When the step was recorded
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(label string, transforms, inverses []document.Transform, before, after selection.Selection) Entry {
	return Entry{
		Label:      label,
		Transforms: transforms,
		Inverses:   inverses,
		Before:     before,
		After:      after,
		Timestamp:  time.Now(),
	}
}

// IsEmpty returns true if the entry has no transforms.
func (e Entry) IsEmpty() bool {
	return len(e.Transforms) == 0
}

// Description returns the entry label, or a summary of its transforms.
func (e Entry) Description() string {
	if e.Label != "" {
		return e.Label
	}
	if len(e.Transforms) == 1 {
		return e.Transforms[0].Description()
	}
	return fmt.Sprintf("%d transforms", len(e.Transforms))
}

// Undo applies the inverses to doc in reverse order.
func (e Entry) Undo(doc *document.Document) (*document.Document, error) {
	inv := slices.Clone(e.Inverses)
	slices.Reverse(inv)
	nd, _, err := document.ApplyAll(doc, inv)
	if err != nil {
		return doc, fmt.Errorf("undo %q: %w", e.Description(), err)
	}
	return nd, nil
}

// Redo reapplies the transforms to doc and returns the entry with freshly
// computed inverses.
func (e Entry) Redo(doc *document.Document) (*document.Document, Entry, error) {
	nd, inv, err := document.ApplyAll(doc, e.Transforms)
	if err != nil {
		return doc, e, fmt.Errorf("redo %q: %w", e.Description(), err)
	}
	e.Inverses = inv
	return nd, e, nil
}

// RestoreBefore returns the pre-step selection for the document produced
// by undoing the entry.
func (e Entry) RestoreBefore(doc *document.Document) selection.Selection {
	return selection.ClampToDocument(e.Before.At(doc.Version()), doc)
}

// RestoreAfter returns the post-step selection for the document produced
// by redoing the entry.
func (e Entry) RestoreAfter(doc *document.Document) selection.Selection {
	return selection.ClampToDocument(e.After.At(doc.Version()), doc)
}

// Info returns read-only info about the entry.
func (e Entry) Info() Info {
	return Info{
		Description: e.Description(),
		Timestamp:   e.Timestamp,
		Transforms:  len(e.Transforms),
	}
}

// Info provides read-only info about an entry.
// Used for displaying undo/redo history to users.
type Info struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was recorded
	Transforms  int       // Number of transforms in the entry
}

// combine merges entries into one undo unit.
func combine(label string, entries []Entry) Entry {
	out := Entry{
		Label:     label,
		Before:    entries[0].Before,
		After:     entries[len(entries)-1].After,
		Timestamp: entries[len(entries)-1].Timestamp,
	}
	for _, e := range entries {
		out.Transforms = append(out.Transforms, e.Transforms...)
		out.Inverses = append(out.Inverses, e.Inverses...)
	}
	return out
}
