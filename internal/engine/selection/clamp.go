package selection

import (
	"fmt"

	"github.com/dshills/inkwell/internal/engine/document"
)

// ClampToDocument makes a selection valid for doc.
//
// A selection older than doc is first remapped through the document's
// change log: positions past a deletion move to the deletion point,
// positions at or past an insertion shift by the inserted length, and
// split or merged blocks carry positions along. Offsets are then clamped
// into [0, len] of their block. A position whose block no longer exists
// moves to the start of the first block. The result is bound to
// doc.Version().
//
// When the selection is Unbound or newer than doc, or the log no longer
// reaches back to the selection's version, only the clamping step runs.
func ClampToDocument(s Selection, doc *document.Document) Selection {
	if s.IsBound() && s.Version < doc.Version() {
		s.Anchor = remap(doc, s.Version, s.Anchor)
		s.Focus = remap(doc, s.Version, s.Focus)
	}
	s.Anchor = clampPosition(doc, s.Anchor)
	s.Focus = clampPosition(doc, s.Focus)
	s.Version = doc.Version()
	return s
}

// Validate reports whether s can be used with doc as-is.
// It returns ErrStaleSelection for a version mismatch, including an
// Unbound selection, and the document's
// ErrUnknownBlock or ErrRange for positions that do not resolve.
func Validate(s Selection, doc *document.Document) error {
	if s.Version != doc.Version() {
		return fmt.Errorf("selection at v%d, document at v%d: %w", s.Version, doc.Version(), ErrStaleSelection)
	}
	for _, p := range []Position{s.Anchor, s.Focus} {
		b, err := doc.Block(p.Block)
		if err != nil {
			return err
		}
		if p.Offset < 0 || p.Offset > b.Len() {
			return fmt.Errorf("position %s in block of length %d: %w", p, b.Len(), document.ErrRange)
		}
	}
	return nil
}

func remap(doc *document.Document, since uint64, p Position) Position {
	block, offset, ok := doc.MapPosition(since, p.Block, p.Offset)
	if !ok {
		return p
	}
	return Position{Block: block, Offset: offset}
}

func clampPosition(doc *document.Document, p Position) Position {
	b, err := doc.Block(p.Block)
	if err != nil {
		return Position{Block: doc.First().ID(), Offset: 0}
	}
	switch {
	case p.Offset < 0:
		p.Offset = 0
	case p.Offset > b.Len():
		p.Offset = b.Len()
	}
	return p
}
