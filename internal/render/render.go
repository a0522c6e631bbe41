package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// blockLabels are the gutter labels drawn before each block.
var blockLabels = map[document.BlockType]string{
	document.BlockParagraph:         "",
	document.BlockHeaderOne:         "h1",
	document.BlockHeaderTwo:         "h2",
	document.BlockHeaderThree:       "h3",
	document.BlockHeaderFour:        "h4",
	document.BlockHeaderFive:        "h5",
	document.BlockHeaderSix:         "h6",
	document.BlockQuote:             ">",
	document.BlockUnorderedListItem: "*",
	document.BlockOrderedListItem:   "1.",
	document.BlockCode:              "```",
}

// Renderer draws documents as styled terminal text.
// A Renderer is immutable and safe for concurrent use.
type Renderer struct {
	theme   Theme
	profile Profile
}

// New creates a renderer. A nil theme selects DefaultTheme.
func New(theme Theme, profile Profile) *Renderer {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &Renderer{theme: theme, profile: profile}
}

// Profile returns the renderer's color profile.
func (r *Renderer) Profile() Profile {
	return r.profile
}

// Render writes doc with sel marked, one block per line.
//
// With color, the selection is drawn in reverse video and a collapsed
// cursor as a reversed cell. Without color, a collapsed cursor is drawn
// as "|" and a range is bracketed with "[" and "]".
func (r *Renderer) Render(w io.Writer, doc *document.Document, sel selection.Selection) error {
	bw := bufio.NewWriter(w)
	sel = selection.ClampToDocument(sel, doc)
	start, end := sel.Ordered(doc)

	for i, b := range doc.Blocks() {
		label := blockLabels[b.Type()]
		if _, known := blockLabels[b.Type()]; !known {
			label = string(b.Type())
		}
		dim := DefaultStyle()
		dim.Attributes = AttrDim
		r.write(bw, dim, fmt.Sprintf("%4s │ ", label))

		r.block(bw, doc, i, b, start, end, sel.IsCollapsed())
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// cell is one rune with its resolved style.
type cell struct {
	text  string
	style Style
}

func (r *Renderer) block(w *bufio.Writer, doc *document.Document, idx int, b *document.Block, start, end selection.Position, collapsed bool) {
	base := DefaultStyle()
	if b.Type().IsHeader() {
		base.Attributes |= AttrBold
	}

	var cells []cell
	for _, run := range b.Runs() {
		s := base.Merge(r.theme.Resolve(run.Styles))
		for _, ch := range run.Text {
			cells = append(cells, cell{text: string(ch), style: s})
		}
	}

	// Selection bounds in this block, as rune offsets; -1 when outside.
	selFrom, selTo := -1, -1
	si, _ := doc.Index(start.Block)
	ei, _ := doc.Index(end.Block)
	if idx >= si && idx <= ei {
		selFrom, selTo = 0, len(cells)
		if idx == si {
			selFrom = start.Offset
		}
		if idx == ei {
			selTo = end.Offset
		}
	}

	if r.profile == ProfileNone {
		r.plainMarks(w, cells, selFrom, selTo, collapsed)
		return
	}

	if collapsed && selFrom >= 0 {
		if selFrom >= len(cells) {
			cells = append(cells, cell{text: " ", style: base})
		}
		cells[selFrom].style.Attributes |= AttrReverse
	} else {
		for i := max(selFrom, 0); i < selTo && i < len(cells); i++ {
			cells[i].style.Attributes |= AttrReverse
		}
	}

	for i := 0; i < len(cells); {
		j := i
		text := ""
		for j < len(cells) && cells[j].style == cells[i].style {
			text += cells[j].text
			j++
		}
		r.write(w, cells[i].style, text)
		i = j
	}
}

func (r *Renderer) plainMarks(w *bufio.Writer, cells []cell, from, to int, collapsed bool) {
	for i := 0; i <= len(cells); i++ {
		if from >= 0 {
			switch {
			case collapsed && i == from:
				w.WriteString("|")
			case !collapsed && i == from && from < to:
				w.WriteString("[")
			}
			if !collapsed && i == to && from < to {
				w.WriteString("]")
			}
		}
		if i < len(cells) {
			w.WriteString(cells[i].text)
		}
	}
}

func (r *Renderer) write(w *bufio.Writer, s Style, text string) {
	if seq := r.profile.sgr(s); seq != "" {
		w.WriteString(seq)
		w.WriteString(text)
		w.WriteString(sgrReset)
		return
	}
	w.WriteString(text)
}
