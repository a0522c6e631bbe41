package shorthand

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine/document"
)

// ErrInvalidRule indicates a malformed formatter rule.
var ErrInvalidRule = errors.New("invalid shorthand rule")

// Rule maps a line prefix to an inline style or a block type.
// Exactly one of Style and BlockType is set.
type Rule struct {
	Prefix    string             `json:"prefix" toml:"prefix" yaml:"prefix"`
	Style     document.Style     `json:"style,omitempty" toml:"style,omitempty" yaml:"style,omitempty"`
	BlockType document.BlockType `json:"block_type,omitempty" toml:"block_type,omitempty" yaml:"block_type,omitempty"`
}

// StyleRule creates a rule applying style to the text after prefix.
func StyleRule(prefix string, style document.Style) Rule {
	return Rule{Prefix: prefix, Style: style}
}

// BlockTypeRule creates a rule changing the block type.
func BlockTypeRule(prefix string, typ document.BlockType) Rule {
	return Rule{Prefix: prefix, BlockType: typ}
}

// DefaultRules returns the built-in rule table in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		StyleRule("*** ", document.StyleUnderline),
		StyleRule("** ", document.StyleRedLine),
		StyleRule("* ", document.StyleBold),
		BlockTypeRule("# ", document.BlockHeaderOne),
	}
}

// Validate checks that the rule is well formed.
func (r Rule) Validate() error {
	if r.Prefix == "" {
		return fmt.Errorf("empty prefix: %w", ErrInvalidRule)
	}
	if !utf8.ValidString(r.Prefix) {
		return fmt.Errorf("prefix %q is not valid UTF-8: %w", r.Prefix, ErrInvalidRule)
	}
	switch {
	case r.Style == "" && r.BlockType == "":
		return fmt.Errorf("prefix %q: needs a style or block type: %w", r.Prefix, ErrInvalidRule)
	case r.Style != "" && r.BlockType != "":
		return fmt.Errorf("prefix %q: has both style and block type: %w", r.Prefix, ErrInvalidRule)
	}
	return nil
}

// PrefixLen returns the prefix length in code points.
func (r Rule) PrefixLen() int {
	return utf8.RuneCountInString(r.Prefix)
}

// IsStyle reports whether the rule applies an inline style.
func (r Rule) IsStyle() bool {
	return r.Style != ""
}

// String returns a human-readable representation of the rule.
func (r Rule) String() string {
	if r.IsStyle() {
		return fmt.Sprintf("%q -> style %s", r.Prefix, r.Style)
	}
	return fmt.Sprintf("%q -> type %s", r.Prefix, r.BlockType)
}

// transforms returns the edit that applies r to a block of length n.
func (r Rule) transforms(id document.BlockID, n int) []document.Transform {
	plen := r.PrefixLen()
	ts := []document.Transform{document.DeleteRange(id, 0, plen)}
	if r.IsStyle() {
		return append(ts, document.ApplyStyle(id, 0, n-plen, r.Style, true))
	}
	return append(ts, document.SetBlockType(id, r.BlockType))
}
