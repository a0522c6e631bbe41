package intent

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// newTestHandler returns a handler that names new blocks n1, n2, ...
func newTestHandler() *Handler {
	n := 0
	return NewHandler(WithIDGenerator(func() document.BlockID {
		n++
		return document.BlockID(fmt.Sprintf("n%d", n))
	}))
}

func newTestDoc(t *testing.T, blocks ...*document.Block) *document.Document {
	t.Helper()
	d, err := document.NewFromBlocks(blocks)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func para(id, text string) *document.Block {
	return document.NewBlock(document.BlockID(id), "", document.NewRun(text))
}

func mustHandle(t *testing.T, h *Handler, d *document.Document, sel selection.Selection, in Intent) Result {
	t.Helper()
	res, err := h.Handle(d, sel, in)
	if err != nil {
		t.Fatalf("Handle(%s) error = %v", in, err)
	}
	return res
}

func texts(d *document.Document) []string {
	var out []string
	for _, b := range d.Blocks() {
		out = append(out, b.Text())
	}
	return out
}

func TestTypingTriggersHeading(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", ""))
	sel := selection.Start(d)

	var res Result
	for _, ch := range []string{"#", " ", "H"} {
		res = mustHandle(t, h, d, sel, InsertCharacter(ch))
		d, sel = res.Document, res.Selection
	}

	b := d.First()
	if b.Type() != document.BlockHeaderOne || b.Text() != "H" {
		t.Fatalf("block = %s, want header-one \"H\"", b)
	}
	if sel.Focus != (selection.Position{Block: "a", Offset: 0}) || !sel.IsCollapsed() {
		t.Errorf("selection = %s, want collapsed at a:0", sel)
	}
	if !res.Formatted || len(res.Steps) != 2 {
		t.Fatalf("Formatted = %t, steps = %d; want true, 2", res.Formatted, len(res.Steps))
	}

	// Undoing only the formatter step restores the typed prefix.
	raw, err := res.Steps[1].Undo(d)
	if err != nil {
		t.Fatal(err)
	}
	if raw.First().Text() != "# H" || raw.First().Type() != document.BlockParagraph {
		t.Errorf("pre-format block = %s", raw.First())
	}
	if got := res.Steps[1].Before.Focus.Offset; got != 3 {
		t.Errorf("pre-format selection offset = %d, want 3", got)
	}
}

func TestFormatterRunsOncePerIntent(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", ""))

	res := mustHandle(t, h, d, selection.Start(d), InsertText("* * x"))
	b := res.Document.First()
	if b.Text() != "* x" {
		t.Errorf("text = %q, want %q", b.Text(), "* x")
	}
	if runs := b.Runs(); len(runs) != 1 || !runs[0].Styles.Has(document.StyleBold) {
		t.Errorf("runs = %v, want one bold run", runs)
	}
}

func TestFormatterIgnoresOtherBlocks(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", "# Title"), para("b", "body"))

	res := mustHandle(t, h, d, selection.CollapseIn(d, "b", 4), InsertCharacter("!"))
	if res.Formatted {
		t.Error("formatter fired for a non-focus block")
	}
	if got := res.Document.First().Text(); got != "# Title" {
		t.Errorf("first block = %q", got)
	}
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		name      string
		sel       func(d *document.Document) selection.Selection
		text      string
		wantTexts []string
		wantFocus selection.Position
	}{
		{
			name:      "at cursor",
			sel:       func(d *document.Document) selection.Selection { return selection.CollapseIn(d, "a", 2) },
			text:      "XY",
			wantTexts: []string{"heXYllo", "world"},
			wantFocus: selection.Position{Block: "a", Offset: 4},
		},
		{
			name:      "replaces selection",
			sel:       func(d *document.Document) selection.Selection { return selectRange(d, "a", 1, "a", 4) },
			text:      "i",
			wantTexts: []string{"hio", "world"},
			wantFocus: selection.Position{Block: "a", Offset: 2},
		},
		{
			name:      "replaces across blocks",
			sel:       func(d *document.Document) selection.Selection { return selectRange(d, "b", 2, "a", 3) },
			text:      "-",
			wantTexts: []string{"hel-rld"},
			wantFocus: selection.Position{Block: "a", Offset: 4},
		},
		{
			name:      "newlines split",
			sel:       func(d *document.Document) selection.Selection { return selection.CollapseIn(d, "a", 5) },
			text:      "1\r\n2\n",
			wantTexts: []string{"hello1", "2", "", "world"},
			wantFocus: selection.Position{Block: "n2", Offset: 0},
		},
		{
			name:      "multibyte lines count runes",
			sel:       func(d *document.Document) selection.Selection { return selection.CollapseIn(d, "a", 5) },
			text:      "é\nwö",
			wantTexts: []string{"helloé", "wö", "world"},
			wantFocus: selection.Position{Block: "n1", Offset: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			d := newTestDoc(t, para("a", "hello"), para("b", "world"))
			res := mustHandle(t, h, d, tt.sel(d), InsertText(tt.text))

			if diff := cmp.Diff(tt.wantTexts, texts(res.Document)); diff != "" {
				t.Errorf("texts mismatch (-want +got):\n%s", diff)
			}
			if res.Selection.Focus != tt.wantFocus || !res.Selection.IsCollapsed() {
				t.Errorf("selection = %s, want %s", res.Selection, tt.wantFocus)
			}
			if len(res.Steps) != 1 {
				t.Fatalf("steps = %d, want 1", len(res.Steps))
			}
			back, err := res.Steps[0].Undo(res.Document)
			if err != nil {
				t.Fatal(err)
			}
			if !back.Equal(d) {
				t.Errorf("undo = %s, want %s", back, d)
			}
		})
	}
}

func selectRange(d *document.Document, ab string, ao int, fb string, fo int) selection.Selection {
	return selection.NewSelection(
		selection.Position{Block: document.BlockID(ab), Offset: ao},
		selection.Position{Block: document.BlockID(fb), Offset: fo},
	).At(d.Version())
}

func TestMultiBlockDeleteRemovesMiddleBlocks(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", "one"), para("b", "two"), para("c", "three"), para("d", "four"))

	res := mustHandle(t, h, d, selection.CollapseIn(d, "a", 0), DeleteRange(selectRange(d, "a", 1, "c", 2)))
	if diff := cmp.Diff([]string{"oree", "four"}, texts(res.Document)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	if res.Selection.Focus != (selection.Position{Block: "a", Offset: 1}) {
		t.Errorf("selection = %s", res.Selection)
	}
	back, err := res.Steps[0].Undo(res.Document)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d) {
		t.Errorf("undo = %s, want %s", back, d)
	}
}

func TestDeleteBackward(t *testing.T) {
	tests := []struct {
		name      string
		blocks    []*document.Block
		at        selection.Position
		wantTexts []string
		wantFocus selection.Position
	}{
		{
			name:      "ascii",
			blocks:    []*document.Block{para("a", "abc")},
			at:        selection.Position{Block: "a", Offset: 2},
			wantTexts: []string{"ac"},
			wantFocus: selection.Position{Block: "a", Offset: 1},
		},
		{
			name:      "combining mark",
			blocks:    []*document.Block{para("a", "cafe\u0301!")},
			at:        selection.Position{Block: "a", Offset: 5},
			wantTexts: []string{"caf!"},
			wantFocus: selection.Position{Block: "a", Offset: 3},
		},
		{
			name:      "zwj emoji",
			blocks:    []*document.Block{para("a", "x\U0001F468\u200d\U0001F469\u200d\U0001F467")},
			at:        selection.Position{Block: "a", Offset: 6},
			wantTexts: []string{"x"},
			wantFocus: selection.Position{Block: "a", Offset: 1},
		},
		{
			name:      "merges into previous",
			blocks:    []*document.Block{para("a", "ab"), para("b", "cd")},
			at:        selection.Position{Block: "b", Offset: 0},
			wantTexts: []string{"abcd"},
			wantFocus: selection.Position{Block: "a", Offset: 2},
		},
		{
			name:      "document start",
			blocks:    []*document.Block{para("a", "ab")},
			at:        selection.Position{Block: "a", Offset: 0},
			wantTexts: []string{"ab"},
			wantFocus: selection.Position{Block: "a", Offset: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDoc(t, tt.blocks...)
			sel := selection.CollapseIn(d, tt.at.Block, tt.at.Offset)
			res := mustHandle(t, newTestHandler(), d, sel, DeleteBackward())

			if diff := cmp.Diff(tt.wantTexts, texts(res.Document)); diff != "" {
				t.Errorf("texts mismatch (-want +got):\n%s", diff)
			}
			if res.Selection.Focus != tt.wantFocus {
				t.Errorf("focus = %s, want %s", res.Selection.Focus, tt.wantFocus)
			}
		})
	}
}

func TestDeleteBackwardResetsFirstHeading(t *testing.T) {
	d := newTestDoc(t, document.NewBlock("a", document.BlockHeaderOne, document.NewRun("Title")))
	res := mustHandle(t, newTestHandler(), d, selection.Start(d), DeleteBackward())
	if b := res.Document.First(); b.Type() != document.BlockParagraph || b.Text() != "Title" {
		t.Errorf("block = %s, want paragraph \"Title\"", b)
	}
	if !res.Changed || len(res.Steps) != 1 {
		t.Errorf("Changed = %t, steps = %d", res.Changed, len(res.Steps))
	}
}

func TestDeleteForward(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", "ab"), para("b", "cd"))

	res := mustHandle(t, h, d, selection.CollapseIn(d, "a", 1), DeleteForward())
	if diff := cmp.Diff([]string{"a", "cd"}, texts(res.Document)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}

	res = mustHandle(t, h, res.Document, res.Selection, DeleteForward())
	if diff := cmp.Diff([]string{"acd"}, texts(res.Document)); diff != "" {
		t.Errorf("merge texts mismatch (-want +got):\n%s", diff)
	}
	if res.Selection.Focus != (selection.Position{Block: "a", Offset: 1}) {
		t.Errorf("focus = %s", res.Selection.Focus)
	}

	end := mustHandle(t, h, res.Document, selection.End(res.Document), DeleteForward())
	if end.Changed || len(end.Steps) != 0 {
		t.Error("delete at document end should change nothing")
	}
}

func TestToggleStyle(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", "hello world"))
	word := selectRange(d, "a", 0, "a", 5)

	res := mustHandle(t, h, d, word, ToggleStyle(document.StyleBold))
	runs := res.Document.First().Runs()
	if len(runs) != 2 || !runs[0].Styles.Has(document.StyleBold) || runs[0].Text != "hello" {
		t.Fatalf("after add runs = %v", runs)
	}
	if res.Selection.Anchor.Offset != 0 || res.Selection.Focus.Offset != 5 {
		t.Errorf("selection changed: %s", res.Selection)
	}

	// A range that is only partly bold gets bold everywhere.
	wider := selectRange(res.Document, "a", 3, "a", 8)
	partial := mustHandle(t, h, res.Document, wider, ToggleStyle(document.StyleBold))
	if runs := partial.Document.First().Runs(); runs[0].Text != "hello wo" {
		t.Errorf("partial toggle runs = %v", runs)
	}

	// Fully bold range loses the style.
	off := mustHandle(t, h, res.Document, res.Selection, ToggleStyle(document.StyleBold))
	if !off.Document.Equal(d) {
		t.Errorf("toggle off = %s, want %s", off.Document, d)
	}
}

func TestToggleStyleCollapsedIsNoop(t *testing.T) {
	d := newTestDoc(t, para("a", "hello"))
	res := mustHandle(t, newTestHandler(), d, selection.CollapseIn(d, "a", 2), ToggleStyle(document.StyleBold))
	if res.Changed || len(res.Steps) != 0 || res.Document != d {
		t.Error("collapsed toggle should not change the document")
	}
}

func TestToggleStyleAcrossBlocks(t *testing.T) {
	d := newTestDoc(t, para("a", "ab"), para("b", "cd"))
	res := mustHandle(t, newTestHandler(), d, selection.Start(d), ToggleStyleIn(document.StyleItalic, selectRange(d, "a", 1, "b", 1)))
	for _, id := range []document.BlockID{"a", "b"} {
		b, err := res.Document.Block(id)
		if err != nil {
			t.Fatal(err)
		}
		italic := 0
		for _, r := range b.Runs() {
			if r.Styles.Has(document.StyleItalic) {
				italic += r.Len()
			}
		}
		if italic != 1 {
			t.Errorf("block %s has %d italic characters, want 1", id, italic)
		}
	}
}

func TestSplitBlock(t *testing.T) {
	tests := []struct {
		name     string
		typ      document.BlockType
		wantNext document.BlockType
	}{
		{"paragraph", document.BlockParagraph, document.BlockParagraph},
		{"header", document.BlockHeaderOne, document.BlockParagraph},
		{"list item", document.BlockUnorderedListItem, document.BlockUnorderedListItem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDoc(t, document.NewBlock("a", tt.typ, document.NewRun("abcd")))
			res := mustHandle(t, newTestHandler(), d, selection.CollapseIn(d, "a", 2), SplitBlock())

			if diff := cmp.Diff([]string{"ab", "cd"}, texts(res.Document)); diff != "" {
				t.Errorf("texts mismatch (-want +got):\n%s", diff)
			}
			next := res.Document.BlockAt(1)
			if next.ID() != "n1" || next.Type() != tt.wantNext {
				t.Errorf("new block = %s, want n1 %s", next, tt.wantNext)
			}
			if res.Document.First().Type() != tt.typ {
				t.Errorf("original block type = %s", res.Document.First().Type())
			}
			if res.Selection.Focus != (selection.Position{Block: "n1", Offset: 0}) {
				t.Errorf("focus = %s", res.Selection.Focus)
			}
		})
	}
}

func TestSetBlockType(t *testing.T) {
	d := newTestDoc(t, para("a", "x"), para("b", "y"), para("c", "z"))
	res := mustHandle(t, newTestHandler(), d, selectRange(d, "c", 0, "b", 1), SetBlockType(document.BlockQuote))

	var got []document.BlockType
	for _, b := range res.Document.Blocks() {
		got = append(got, b.Type())
	}
	want := []document.BlockType{document.BlockParagraph, document.BlockQuote, document.BlockQuote}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}

	again := mustHandle(t, newTestHandler(), res.Document, res.Selection, SetBlockType(document.BlockQuote))
	if again.Changed {
		t.Error("setting the current type should change nothing")
	}
}

func TestStaleSelectionIsRemapped(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", "world"))
	stale := selection.CollapseIn(d, "a", 5)

	d2, err := document.Apply(d, document.InsertText("a", 0, "hello "))
	if err != nil {
		t.Fatal(err)
	}
	res := mustHandle(t, h, d2, stale, InsertCharacter("!"))
	if got := res.Document.First().Text(); got != "hello world!" {
		t.Errorf("text = %q, want %q", got, "hello world!")
	}
	if res.Selection.Version != res.Document.Version() {
		t.Errorf("selection version = %d, document version = %d", res.Selection.Version, res.Document.Version())
	}
}

func TestInvalidIntents(t *testing.T) {
	tests := []struct {
		name string
		in   Intent
	}{
		{"two characters", InsertCharacter("ab")},
		{"empty character", InsertCharacter("")},
		{"toggle without style", ToggleStyle("")},
		{"type without type", SetBlockType("")},
		{"unknown kind", Intent{Kind: "teleport"}},
	}
	d := newTestDoc(t, para("a", "x"))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestHandler().Handle(d, selection.Start(d), tt.in)
			if !errors.Is(err, ErrInvalidIntent) {
				t.Errorf("Handle() error = %v, want ErrInvalidIntent", err)
			}
			if res.Document != d {
				t.Error("failed intent should return the input document")
			}
		})
	}
}

func TestInsertCharacterAcceptsGraphemeCluster(t *testing.T) {
	d := newTestDoc(t, para("a", ""))
	res := mustHandle(t, newTestHandler(), d, selection.Start(d), InsertCharacter("e\u0301"))
	if res.Selection.Focus.Offset != 2 {
		t.Errorf("focus = %d, want 2", res.Selection.Focus.Offset)
	}
}

func TestUnboundRangeAfterTyping(t *testing.T) {
	h := newTestHandler()
	d := newTestDoc(t, para("a", ""))
	sel := selection.Start(d)
	for _, ch := range []string{"h", "e", "l", "l", "o"} {
		res := mustHandle(t, h, d, sel, InsertCharacter(ch))
		d, sel = res.Document, res.Selection
	}

	whole := selection.NewSelection(selection.Position{Block: "a", Offset: 0}, selection.Position{Block: "a", Offset: 5})
	res := mustHandle(t, h, d, sel, ToggleStyleIn(document.StyleBold, whole))
	if !res.Changed {
		t.Fatal("ToggleStyleIn on an unbound range reported no change")
	}
	runs := res.Document.First().Runs()
	if len(runs) != 1 || !runs[0].Styles.Has(document.StyleBold) {
		t.Errorf("runs = %v, want one bold run", runs)
	}

	middle := selection.NewSelection(selection.Position{Block: "a", Offset: 1}, selection.Position{Block: "a", Offset: 3})
	res = mustHandle(t, h, res.Document, res.Selection, DeleteRange(middle))
	if diff := cmp.Diff([]string{"hlo"}, texts(res.Document)); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}
