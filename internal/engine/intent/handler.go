package intent

import (
	"fmt"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/engine/shorthand"
)

// Option configures a Handler.
type Option func(*Handler)

// WithFormatter sets the post-edit formatter.
func WithFormatter(f *shorthand.Formatter) Option {
	return func(h *Handler) {
		if f != nil {
			h.formatter = f
		}
	}
}

// WithIDGenerator sets the function that names blocks created by splits.
func WithIDGenerator(fn func() document.BlockID) Option {
	return func(h *Handler) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// Handler dispatches intents to document transforms.
// A Handler is immutable and safe for concurrent use; callers serialize
// intents against one document themselves.
type Handler struct {
	formatter *shorthand.Formatter
	newID     func() document.BlockID
}

// NewHandler creates a handler using the default shorthand rules.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		formatter: shorthand.Default(),
		newID:     document.NewBlockID,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Formatter returns the handler's formatter.
func (h *Handler) Formatter() *shorthand.Formatter {
	return h.formatter
}

// Result is the outcome of handling one intent.
type Result struct {
	Document  *document.Document
	Selection selection.Selection
	Changed   bool            // Document content changed
	Steps     []history.Entry // Raw edit, then the formatter pass if a rule fired
	Formatted bool            // A shorthand rule fired
	Rule      shorthand.Rule  // Rule that fired
}

// Handle applies in to doc at sel and runs the formatter once on the
// result. The input document is never modified. On error the input
// document and the clamped selection are returned.
func (h *Handler) Handle(doc *document.Document, sel selection.Selection, in Intent) (Result, error) {
	sel = selection.ClampToDocument(sel, doc)
	res := Result{Document: doc, Selection: sel}

	if err := in.Validate(); err != nil {
		return res, err
	}

	e := &edit{doc: doc}
	after, err := h.dispatch(e, sel, in)
	if err != nil {
		return res, fmt.Errorf("%s: %w", in.Kind, err)
	}
	after = selection.ClampToDocument(after.At(e.doc.Version()), e.doc)

	if e.changed() {
		res.Steps = append(res.Steps, history.NewEntry(in.label(), e.transforms, e.inverses, sel, after))
		res.Changed = true
	}
	res.Document, res.Selection = e.doc, after

	formatted, err := h.formatter.Format(res.Document, res.Selection)
	if err != nil {
		return res, err
	}
	if formatted.Changed {
		res.Steps = append(res.Steps, history.NewEntry(
			fmt.Sprintf("Shorthand %q", formatted.Rule.Prefix),
			formatted.Transforms, formatted.Inverses,
			res.Selection, formatted.Selection,
		))
		res.Document, res.Selection = formatted.Document, formatted.Selection
		res.Changed, res.Formatted, res.Rule = true, true, formatted.Rule
	}
	return res, nil
}

// dispatch applies the raw edit for in and returns the selection after it.
func (h *Handler) dispatch(e *edit, sel selection.Selection, in Intent) (selection.Selection, error) {
	target := sel
	if in.Range != nil {
		target = selection.ClampToDocument(*in.Range, e.doc)
	}

	switch in.Kind {
	case KindInsertCharacter, KindInsertText:
		p, err := e.deleteSelection(sel)
		if err != nil {
			return sel, err
		}
		p, err = e.insertText(p, in.Text, h.newID)
		return collapse(p), err

	case KindDeleteBackward:
		if !sel.IsCollapsed() {
			p, err := e.deleteSelection(sel)
			return collapse(p), err
		}
		p, err := e.deleteBackward(sel.Focus)
		return collapse(p), err

	case KindDeleteForward:
		if !sel.IsCollapsed() {
			p, err := e.deleteSelection(sel)
			return collapse(p), err
		}
		p, err := e.deleteForward(sel.Focus)
		return collapse(p), err

	case KindDeleteRange:
		if target.IsCollapsed() {
			return sel, nil
		}
		p, err := e.deleteSelection(target)
		return collapse(p), err

	case KindToggleStyle:
		if target.IsCollapsed() {
			return sel, nil
		}
		return sel, e.toggleStyle(target, in.Style)

	case KindSplitBlock:
		p, err := e.deleteSelection(sel)
		if err != nil {
			return sel, err
		}
		p, err = e.splitBlock(p, h.newID())
		return collapse(p), err

	case KindSetBlockType:
		return sel, e.setBlockType(target, in.Type)
	}
	return sel, fmt.Errorf("kind %q: %w", in.Kind, ErrInvalidIntent)
}

func collapse(p selection.Position) selection.Selection {
	return selection.NewSelection(p, p)
}
