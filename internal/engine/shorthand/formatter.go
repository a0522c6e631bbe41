package shorthand

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// Placement controls where the cursor lands after a rule fires.
type Placement int

const (
	// PlaceStart collapses the cursor at offset 0, immediately after the
	// removed prefix region.
	PlaceStart Placement = iota

	// PlacePreserve keeps the cursor on the character it was on before
	// the prefix was removed.
	PlacePreserve
)

// ParsePlacement parses "start" or "preserve".
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(s) {
	case "", "start":
		return PlaceStart, nil
	case "preserve":
		return PlacePreserve, nil
	}
	return PlaceStart, fmt.Errorf("unknown cursor placement %q", s)
}

// String returns the placement name.
func (p Placement) String() string {
	if p == PlacePreserve {
		return "preserve"
	}
	return "start"
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithPlacement sets the cursor placement after a match.
func WithPlacement(p Placement) Option {
	return func(f *Formatter) {
		f.placement = p
	}
}

// Formatter applies shorthand rules to the focus block.
// A Formatter is immutable and safe for concurrent use.
type Formatter struct {
	rules     []Rule
	placement Placement
}

// New creates a formatter from rules.
// Rules are ordered longest prefix first; rules with equal prefix length
// keep their given order. Every rule must validate.
func New(rules []Rule, opts ...Option) (*Formatter, error) {
	for i, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}
	f := &Formatter{rules: slices.Clone(rules)}
	slices.SortStableFunc(f.rules, func(a, b Rule) int {
		return b.PrefixLen() - a.PrefixLen()
	})
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Default returns a formatter with DefaultRules.
func Default(opts ...Option) *Formatter {
	f, _ := New(DefaultRules(), opts...)
	return f
}

// Rules returns the rules in the order they are tried.
func (f *Formatter) Rules() []Rule {
	return slices.Clone(f.rules)
}

// Placement returns the configured cursor placement.
func (f *Formatter) Placement() Placement {
	return f.placement
}

// Match returns the first rule that fires for text.
// A rule fires when text starts with its prefix and is strictly longer.
func (f *Formatter) Match(text string) (Rule, bool) {
	n := utf8.RuneCountInString(text)
	for _, r := range f.rules {
		if strings.HasPrefix(text, r.Prefix) && n > r.PrefixLen() {
			return r, true
		}
	}
	return Rule{}, false
}

// Result is the outcome of one formatting pass.
type Result struct {
	Document   *document.Document
	Selection  selection.Selection
	Changed    bool
	Rule       Rule                 // Rule that fired; zero when unchanged
	Transforms []document.Transform // Applied transforms, in order
	Inverses   []document.Transform // Inverses, in application order
}

// Format runs one pass over the block holding the selection focus.
// The selection must be valid for doc. When no rule matches the input is
// returned with Changed false and a nil error.
func (f *Formatter) Format(doc *document.Document, sel selection.Selection) (Result, error) {
	unchanged := Result{Document: doc, Selection: sel}

	b, err := doc.Block(sel.Focus.Block)
	if err != nil {
		return unchanged, fmt.Errorf("format: %w", err)
	}
	rule, ok := f.Match(b.Text())
	if !ok {
		return unchanged, nil
	}

	ts := rule.transforms(b.ID(), b.Len())
	nd, inverses, err := document.ApplyAll(doc, ts)
	if err != nil {
		return unchanged, fmt.Errorf("format %s: %w", rule, err)
	}

	offset := 0
	if f.placement == PlacePreserve {
		offset = max(sel.Focus.Offset-rule.PrefixLen(), 0)
	}
	return Result{
		Document:   nd,
		Selection:  selection.CollapseIn(nd, b.ID(), offset),
		Changed:    true,
		Rule:       rule,
		Transforms: ts,
		Inverses:   inverses,
	}, nil
}
