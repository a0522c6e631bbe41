package selection

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/document"
)

// ErrStaleSelection indicates a selection was computed against a document
// version other than the one it is used with.
var ErrStaleSelection = errors.New("stale selection")

// Position is a character offset within a block.
type Position struct {
	Block  document.BlockID `json:"block"`
	Offset int              `json:"offset"`
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Block, p.Offset)
}

// Selection represents a range of selected text.
// Anchor is where the selection started; Focus is the current cursor
// position. Version is the document version the selection is valid for.
type Selection struct {
	Anchor  Position `json:"anchor"`
	Focus   Position `json:"focus"`
	Version uint64   `json:"version"`
}

// Unbound is the version of a selection not tied to any document version.
// Unbound selections are taken to refer to whatever document they are used
// with and are never remapped through a change log.
const Unbound = ^uint64(0)

// NewSelection creates a selection from anchor to focus.
// The result is Unbound; bind it with At.
func NewSelection(anchor, focus Position) Selection {
	return Selection{Anchor: anchor, Focus: focus, Version: Unbound}
}

// CollapseToOffset creates a zero-width selection at offset in block.
// The result is Unbound; bind it with At.
func CollapseToOffset(block document.BlockID, offset int) Selection {
	p := Position{Block: block, Offset: offset}
	return Selection{Anchor: p, Focus: p, Version: Unbound}
}

// CollapseIn creates a zero-width selection bound to doc's current version.
func CollapseIn(doc *document.Document, block document.BlockID, offset int) Selection {
	return CollapseToOffset(block, offset).At(doc.Version())
}

// Start returns a cursor at the beginning of doc.
func Start(doc *document.Document) Selection {
	return CollapseIn(doc, doc.First().ID(), 0)
}

// End returns a cursor at the end of doc.
func End(doc *document.Document) Selection {
	last := doc.Last()
	return CollapseIn(doc, last.ID(), last.Len())
}

// SelectBlock selects the whole text of a block.
func SelectBlock(doc *document.Document, id document.BlockID) (Selection, error) {
	b, err := doc.Block(id)
	if err != nil {
		return Selection{}, err
	}
	return Selection{
		Anchor:  Position{Block: id, Offset: 0},
		Focus:   Position{Block: id, Offset: b.Len()},
		Version: doc.Version(),
	}, nil
}

// At returns the selection bound to version.
func (s Selection) At(version uint64) Selection {
	s.Version = version
	return s
}

// IsBound reports whether the selection names a document version.
func (s Selection) IsBound() bool {
	return s.Version != Unbound
}

// IsCollapsed returns true if the selection has no extent.
func (s Selection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

// IsSingleBlock returns true if anchor and focus are in the same block.
func (s Selection) IsSingleBlock() bool {
	return s.Anchor.Block == s.Focus.Block
}

// Collapse collapses the selection to its focus.
func (s Selection) Collapse() Selection {
	s.Anchor = s.Focus
	return s
}

// Extend returns a selection with the focus moved to p; the anchor stays.
func (s Selection) Extend(p Position) Selection {
	s.Focus = p
	return s
}

// Flip swaps anchor and focus.
func (s Selection) Flip() Selection {
	s.Anchor, s.Focus = s.Focus, s.Anchor
	return s
}

// Ordered returns the selection bounds in document order.
func (s Selection) Ordered(doc *document.Document) (start, end Position) {
	if Compare(doc, s.Anchor, s.Focus) <= 0 {
		return s.Anchor, s.Focus
	}
	return s.Focus, s.Anchor
}

// IsBackward returns true if the focus precedes the anchor.
func (s Selection) IsBackward(doc *document.Document) bool {
	return Compare(doc, s.Focus, s.Anchor) < 0
}

// String returns a human-readable representation of the selection.
func (s Selection) String() string {
	v := fmt.Sprintf("@v%d", s.Version)
	if !s.IsBound() {
		v = "@unbound"
	}
	if s.IsCollapsed() {
		return fmt.Sprintf("|%s %s", s.Focus, v)
	}
	return fmt.Sprintf("%s..%s %s", s.Anchor, s.Focus, v)
}

// Compare orders two positions in doc: -1, 0 or 1.
// Positions in unknown blocks sort after known ones.
func Compare(doc *document.Document, a, b Position) int {
	if a.Block != b.Block {
		ia, oka := doc.Index(a.Block)
		ib, okb := doc.Index(b.Block)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		case ia < ib:
			return -1
		case ia > ib:
			return 1
		}
		return 0
	}
	switch {
	case a.Offset < b.Offset:
		return -1
	case a.Offset > b.Offset:
		return 1
	}
	return 0
}
