package history

import (
	"errors"
	"testing"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Helper to create a single-block test document.
func newTestDoc(t *testing.T, text string) *document.Document {
	t.Helper()
	d, err := document.NewFromBlocks([]*document.Block{
		document.NewBlock("b", "", document.NewRun(text)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// edit applies ts to d and returns the new document with a matching entry.
func edit(t *testing.T, d *document.Document, label string, before selection.Selection, ts ...document.Transform) (*document.Document, Entry) {
	t.Helper()
	nd, inv, err := document.ApplyAll(d, ts)
	if err != nil {
		t.Fatal(err)
	}
	after := selection.ClampToDocument(before, nd)
	return nd, NewEntry(label, ts, inv, before, after)
}

func TestNewDefaults(t *testing.T) {
	h := New(0)
	if h.MaxEntries() != DefaultMaxEntries {
		t.Errorf("MaxEntries() = %d, want %d", h.MaxEntries(), DefaultMaxEntries)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("new history should be empty")
	}
}

func TestUndoRedo(t *testing.T) {
	h := New(100)
	orig := newTestDoc(t, "hello")
	before := selection.CollapseIn(orig, "b", 5)

	d, e := edit(t, orig, "type", before, document.InsertText("b", 5, " world"))
	h.Push(e)

	undone, got, err := h.Undo(d)
	if err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !undone.Equal(orig) {
		t.Errorf("Undo() = %s, want %s", undone, orig)
	}
	if undone.Version() <= d.Version() {
		t.Errorf("Undo() version = %d, want > %d", undone.Version(), d.Version())
	}
	sel := got.RestoreBefore(undone)
	if sel.Focus.Offset != 5 || sel.Version != undone.Version() {
		t.Errorf("RestoreBefore() = %s", sel)
	}

	redone, got, err := h.Redo(undone)
	if err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if !redone.Equal(d) {
		t.Errorf("Redo() = %s, want %s", redone, d)
	}
	if sel := got.RestoreAfter(redone); sel.Focus.Offset != 11 {
		t.Errorf("RestoreAfter() = %s", sel)
	}

	// The redone entry must still undo cleanly.
	again, _, err := h.Undo(redone)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Equal(orig) {
		t.Errorf("second Undo() = %s", again)
	}
}

func TestUndoEmpty(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "x")
	got, _, err := h.Undo(d)
	if !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if got != d {
		t.Error("Undo() on empty history should return the input document")
	}
	if _, _, err := h.Redo(d); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "")
	sel := selection.CollapseIn(d, "b", 0)

	d, e := edit(t, d, "a", sel, document.InsertText("b", 0, "a"))
	h.Push(e)
	d, _, _ = h.Undo(d)
	if !h.CanRedo() {
		t.Fatal("expected redo")
	}

	_, e = edit(t, d, "b", sel.At(d.Version()), document.InsertText("b", 0, "b"))
	h.Push(e)
	if h.CanRedo() {
		t.Error("Push should clear the redo stack")
	}
}

func TestPushIgnoresEmptyEntry(t *testing.T) {
	h := New(10)
	h.Push(Entry{Label: "nothing"})
	if h.CanUndo() {
		t.Error("empty entry should not be recorded")
	}
}

func TestMaxEntries(t *testing.T) {
	h := New(3)
	d := newTestDoc(t, "")
	for i := 0; i < 5; i++ {
		var e Entry
		d, e = edit(t, d, "", selection.CollapseIn(d, "b", 0), document.InsertText("b", 0, "x"))
		h.Push(e)
	}
	if h.UndoCount() != 3 {
		t.Errorf("UndoCount() = %d, want 3", h.UndoCount())
	}

	h.SetMaxEntries(1)
	if h.UndoCount() != 1 {
		t.Errorf("UndoCount() after SetMaxEntries = %d, want 1", h.UndoCount())
	}
}

func TestUndoFailureKeepsEntry(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "hello")
	d, e := edit(t, d, "type", selection.CollapseIn(d, "b", 5), document.InsertText("b", 5, "!"))
	h.Push(e)

	other := newTestDoc(t, "")
	if _, _, err := h.Undo(other); !errors.Is(err, document.ErrRange) {
		t.Fatalf("Undo() on mismatched document error = %v, want ErrRange", err)
	}
	if h.UndoCount() != 1 || h.CanRedo() {
		t.Error("failed undo should leave the stacks unchanged")
	}
	if _, _, err := h.Undo(d); err != nil {
		t.Errorf("Undo() on the right document error = %v", err)
	}
}

func TestGrouping(t *testing.T) {
	h := New(10)
	orig := newTestDoc(t, "")
	d := orig

	h.BeginGroup("Paste")
	if !h.IsGrouping() {
		t.Fatal("IsGrouping() = false")
	}
	for _, s := range []string{"a", "b", "c"} {
		var e Entry
		d, e = edit(t, d, s, selection.End(d), document.InsertText("b", d.First().Len(), s))
		h.Push(e)
	}
	h.BeginGroup("nested") // ignored
	h.EndGroup()

	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want 1", h.UndoCount())
	}
	info, ok := h.PeekUndo()
	if !ok || info.Description != "Paste" || info.Transforms != 3 {
		t.Errorf("PeekUndo() = %+v", info)
	}

	undone, e, err := h.Undo(d)
	if err != nil {
		t.Fatal(err)
	}
	if !undone.Equal(orig) {
		t.Errorf("group undo = %s, want empty", undone)
	}
	if e.Before.Focus.Offset != 0 {
		t.Errorf("group Before = %s, want offset 0", e.Before)
	}
}

func TestGroupScope(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "")

	func() {
		defer h.GroupScope("scope").End()
		for i := 0; i < 2; i++ {
			var e Entry
			d, e = edit(t, d, "", selection.Start(d), document.InsertText("b", 0, "x"))
			h.Push(e)
		}
	}()

	if h.UndoCount() != 1 || h.IsGrouping() {
		t.Errorf("UndoCount() = %d, grouping = %t", h.UndoCount(), h.IsGrouping())
	}
}

func TestCheckpointRevertAndReplay(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "ab")
	first := selection.CollapseIn(d, "b", 2)

	d, e := edit(t, d, "", first, document.InsertText("b", 2, "c"))
	h.Push(e)
	atCheckpoint := d
	cp := h.Checkpoint()

	for _, tr := range []document.Transform{
		document.InsertText("b", 3, "d"),
		document.ApplyStyle("b", 0, 4, document.StyleBold, true),
		document.SplitBlock("b", 2, "n", ""),
	} {
		d, e = edit(t, d, "", selection.End(d), tr)
		h.Push(e)
	}

	reverted, last, err := h.RevertTo(cp, d)
	if err != nil {
		t.Fatal(err)
	}
	if !reverted.Equal(atCheckpoint) {
		t.Errorf("RevertTo() = %s, want %s", reverted, atCheckpoint)
	}
	if sel := last.RestoreBefore(reverted); sel.Focus.Offset != 3 {
		t.Errorf("checkpoint selection = %s, want offset 3", sel)
	}
	if h.UndoCount() != 1 || h.RedoCount() != 3 {
		t.Errorf("counts = %d/%d, want 1/3", h.UndoCount(), h.RedoCount())
	}

	replayed, _, err := h.ReplayTo(Checkpoint{undoDepth: 4}, reverted)
	if err != nil {
		t.Fatal(err)
	}
	if !replayed.Equal(d) {
		t.Errorf("ReplayTo() = %s, want %s", replayed, d)
	}
}

func TestUndoRedoInfo(t *testing.T) {
	h := New(10)
	d := newTestDoc(t, "")
	for _, label := range []string{"one", "two"} {
		var e Entry
		d, e = edit(t, d, label, selection.Start(d), document.InsertText("b", 0, "x"))
		h.Push(e)
	}
	if _, _, err := h.Undo(d); err != nil {
		t.Fatal(err)
	}

	undo := h.UndoInfo()
	redo := h.RedoInfo()
	if len(undo) != 1 || undo[0].Description != "one" {
		t.Errorf("UndoInfo() = %+v", undo)
	}
	if len(redo) != 1 || redo[0].Description != "two" {
		t.Errorf("RedoInfo() = %+v", redo)
	}
	if info, ok := h.PeekRedo(); !ok || info.Timestamp.IsZero() {
		t.Errorf("PeekRedo() = %+v, %t", info, ok)
	}

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear() left history")
	}
}

func TestEntryDescription(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{"label", Entry{Label: "Bold"}, "Bold"},
		{"single", Entry{Transforms: []document.Transform{document.InsertText("b", 0, "x")}}, document.InsertText("b", 0, "x").Description()},
		{"many", Entry{Transforms: make([]document.Transform, 3)}, "3 transforms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Description(); got != tt.want {
				t.Errorf("Description() = %q, want %q", got, tt.want)
			}
		})
	}
}
