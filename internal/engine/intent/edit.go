package intent

import (
	"fmt"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// edit accumulates transforms applied to a working document.
type edit struct {
	doc        *document.Document
	transforms []document.Transform
	inverses   []document.Transform
}

func (e *edit) apply(t document.Transform) error {
	nd, inv, err := document.ApplyWithInverse(e.doc, t)
	if err != nil {
		return err
	}
	e.doc = nd
	e.transforms = append(e.transforms, t)
	e.inverses = append(e.inverses, inv)
	return nil
}

func (e *edit) changed() bool {
	return len(e.transforms) > 0
}

func (e *edit) block(id document.BlockID) (*document.Block, int, error) {
	b, err := e.doc.Block(id)
	if err != nil {
		return nil, 0, err
	}
	i, _ := e.doc.Index(id)
	return b, i, nil
}

// deleteSelection removes the selected content and returns the collapsed
// position at its start. Multi-block selections lose the tail of the
// first block, every block in between and the head of the last, then the
// first and last blocks are merged.
func (e *edit) deleteSelection(sel selection.Selection) (selection.Position, error) {
	start, end := sel.Ordered(e.doc)
	if sel.IsCollapsed() {
		return start, nil
	}
	if start.Block == end.Block {
		return start, e.apply(document.DeleteRange(start.Block, start.Offset, end.Offset))
	}

	first, fi, err := e.block(start.Block)
	if err != nil {
		return start, err
	}
	_, li, err := e.block(end.Block)
	if err != nil {
		return start, err
	}

	if end.Offset > 0 {
		if err := e.apply(document.DeleteRange(end.Block, 0, end.Offset)); err != nil {
			return start, err
		}
	}
	if start.Offset < first.Len() {
		if err := e.apply(document.DeleteRange(start.Block, start.Offset, first.Len())); err != nil {
			return start, err
		}
	}
	middle := make([]document.BlockID, 0, li-fi-1)
	for i := fi + 1; i < li; i++ {
		middle = append(middle, e.doc.BlockAt(i).ID())
	}
	for _, id := range middle {
		if err := e.apply(document.RemoveBlock(id)); err != nil {
			return start, err
		}
	}
	return start, e.apply(document.MergeBlocks(start.Block, end.Block))
}

// insertText inserts text at p, splitting blocks at newlines, and returns
// the position after the inserted text.
func (e *edit) insertText(p selection.Position, text string, newID func() document.BlockID) (selection.Position, error) {
	for i, line := range splitLines(text) {
		if i > 0 {
			next, err := e.splitBlock(p, newID())
			if err != nil {
				return p, err
			}
			p = next
		}
		if line == "" {
			continue
		}
		if err := e.apply(document.InsertText(p.Block, p.Offset, line)); err != nil {
			return p, err
		}
		p.Offset += utf8.RuneCountInString(line)
	}
	return p, nil
}

// splitBlock splits the block at p into a new block with id next and
// returns the position at the start of the new block. Headers split into
// a paragraph; every other type carries over.
func (e *edit) splitBlock(p selection.Position, next document.BlockID) (selection.Position, error) {
	b, _, err := e.block(p.Block)
	if err != nil {
		return p, err
	}
	var typ document.BlockType
	if b.Type().IsHeader() {
		typ = document.BlockParagraph
	}
	if err := e.apply(document.SplitBlock(p.Block, p.Offset, next, typ)); err != nil {
		return p, err
	}
	return selection.Position{Block: next, Offset: 0}, nil
}

// deleteBackward removes the grapheme cluster before p. At the start of a
// block the block merges into its predecessor; the first block instead
// drops back to a paragraph.
func (e *edit) deleteBackward(p selection.Position) (selection.Position, error) {
	b, i, err := e.block(p.Block)
	if err != nil {
		return p, err
	}
	if p.Offset > 0 {
		n := prevClusterLen(b.Text(), p.Offset)
		if err := e.apply(document.DeleteRange(p.Block, p.Offset-n, p.Offset)); err != nil {
			return p, err
		}
		return selection.Position{Block: p.Block, Offset: p.Offset - n}, nil
	}
	if i == 0 {
		if b.Type() != document.BlockParagraph {
			return p, e.apply(document.SetBlockType(p.Block, document.BlockParagraph))
		}
		return p, nil
	}
	prev := e.doc.BlockAt(i - 1)
	at := selection.Position{Block: prev.ID(), Offset: prev.Len()}
	return at, e.apply(document.MergeBlocks(prev.ID(), p.Block))
}

// deleteForward removes the grapheme cluster after p. At the end of a
// block the following block merges in.
func (e *edit) deleteForward(p selection.Position) (selection.Position, error) {
	b, i, err := e.block(p.Block)
	if err != nil {
		return p, err
	}
	if p.Offset < b.Len() {
		n := nextClusterLen(b.Text(), p.Offset)
		return p, e.apply(document.DeleteRange(p.Block, p.Offset, p.Offset+n))
	}
	if i == e.doc.Len()-1 {
		return p, nil
	}
	return p, e.apply(document.MergeBlocks(p.Block, e.doc.BlockAt(i+1).ID()))
}

// segment is the part of one block covered by a selection.
type segment struct {
	block      document.BlockID
	start, end int
}

// segments splits a selection into per-block ranges in document order.
// Empty ranges are omitted.
func (e *edit) segments(sel selection.Selection) ([]segment, error) {
	start, end := sel.Ordered(e.doc)
	_, fi, err := e.block(start.Block)
	if err != nil {
		return nil, err
	}
	_, li, err := e.block(end.Block)
	if err != nil {
		return nil, err
	}
	var out []segment
	for i := fi; i <= li; i++ {
		b := e.doc.BlockAt(i)
		s, t := 0, b.Len()
		if i == fi {
			s = start.Offset
		}
		if i == li {
			t = end.Offset
		}
		if s < t {
			out = append(out, segment{block: b.ID(), start: s, end: t})
		}
	}
	return out, nil
}

// toggleStyle removes style when every selected character already carries
// it, and adds it otherwise.
func (e *edit) toggleStyle(sel selection.Selection, style document.Style) error {
	segs, err := e.segments(sel)
	if err != nil {
		return err
	}
	all := true
	for _, s := range segs {
		b, _, err := e.block(s.block)
		if err != nil {
			return err
		}
		runs, err := b.Fragment(s.start, s.end)
		if err != nil {
			return err
		}
		for _, r := range runs {
			if !r.Styles.Has(style) {
				all = false
			}
		}
	}
	for _, s := range segs {
		if err := e.apply(document.ApplyStyle(s.block, s.start, s.end, style, !all)); err != nil {
			return fmt.Errorf("toggle %s: %w", style, err)
		}
	}
	return nil
}

// setBlockType sets typ on every block from the selection start to its end.
func (e *edit) setBlockType(sel selection.Selection, typ document.BlockType) error {
	start, end := sel.Ordered(e.doc)
	_, fi, err := e.block(start.Block)
	if err != nil {
		return err
	}
	_, li, err := e.block(end.Block)
	if err != nil {
		return err
	}
	ids := make([]document.BlockID, 0, li-fi+1)
	for i := fi; i <= li; i++ {
		if b := e.doc.BlockAt(i); b.Type() != typ {
			ids = append(ids, b.ID())
		}
	}
	for _, id := range ids {
		if err := e.apply(document.SetBlockType(id, typ)); err != nil {
			return err
		}
	}
	return nil
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// prevClusterLen returns the length in code points of the grapheme
// cluster ending at offset.
func prevClusterLen(text string, offset int) int {
	runes := []rune(text)
	g := uniseg.NewGraphemes(string(runes[:offset]))
	n := 0
	for g.Next() {
		n = len(g.Runes())
	}
	return max(n, 1)
}

// nextClusterLen returns the length in code points of the grapheme
// cluster starting at offset.
func nextClusterLen(text string, offset int) int {
	runes := []rune(text)
	g := uniseg.NewGraphemes(string(runes[offset:]))
	if g.Next() {
		return len(g.Runes())
	}
	return 1
}
