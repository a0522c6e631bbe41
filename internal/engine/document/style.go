package document

import (
	"encoding/json"
	"slices"
	"strings"
)

// Style is an inline style tag such as BOLD or a custom tag like redLine.
type Style string

// Well-known inline styles.
const (
	StyleBold          Style = "BOLD"
	StyleItalic        Style = "ITALIC"
	StyleUnderline     Style = "UNDERLINE"
	StyleCode          Style = "CODE"
	StyleStrikethrough Style = "STRIKETHROUGH"
	StyleRedLine       Style = "redLine"
)

// StyleSet is an immutable set of styles.
// The zero value is the empty set and represents plain text.
type StyleSet struct {
	styles []Style // sorted, unique, never mutated after construction
}

// NewStyleSet creates a set from the given styles.
// Duplicates and empty tags are dropped.
func NewStyleSet(styles ...Style) StyleSet {
	if len(styles) == 0 {
		return StyleSet{}
	}
	out := make([]Style, 0, len(styles))
	for _, s := range styles {
		if s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		return StyleSet{}
	}
	return StyleSet{styles: out}
}

// Len returns the number of styles in the set.
func (s StyleSet) Len() int {
	return len(s.styles)
}

// IsEmpty returns true for the plain-text style set.
func (s StyleSet) IsEmpty() bool {
	return len(s.styles) == 0
}

// Has reports whether the set contains style.
func (s StyleSet) Has(style Style) bool {
	_, found := slices.BinarySearch(s.styles, style)
	return found
}

// With returns a set that also contains style.
func (s StyleSet) With(style Style) StyleSet {
	if style == "" || s.Has(style) {
		return s
	}
	out := make([]Style, len(s.styles), len(s.styles)+1)
	copy(out, s.styles)
	out = append(out, style)
	slices.Sort(out)
	return StyleSet{styles: out}
}

// Without returns a set that does not contain style.
func (s StyleSet) Without(style Style) StyleSet {
	i, found := slices.BinarySearch(s.styles, style)
	if !found {
		return s
	}
	if len(s.styles) == 1 {
		return StyleSet{}
	}
	out := make([]Style, 0, len(s.styles)-1)
	out = append(out, s.styles[:i]...)
	out = append(out, s.styles[i+1:]...)
	return StyleSet{styles: out}
}

// Equal reports whether both sets contain the same styles.
func (s StyleSet) Equal(other StyleSet) bool {
	return slices.Equal(s.styles, other.styles)
}

// Styles returns the styles in sorted order.
// The returned slice is a copy.
func (s StyleSet) Styles() []Style {
	return slices.Clone(s.styles)
}

// String returns a human-readable representation such as "{BOLD,redLine}".
func (s StyleSet) String() string {
	parts := make([]string, len(s.styles))
	for i, st := range s.styles {
		parts[i] = string(st)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON encodes the set as a sorted array of strings.
func (s StyleSet) MarshalJSON() ([]byte, error) {
	if s.styles == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.styles)
}

// UnmarshalJSON decodes an array of strings, dropping duplicates.
func (s *StyleSet) UnmarshalJSON(data []byte) error {
	var styles []Style
	if err := json.Unmarshal(data, &styles); err != nil {
		return err
	}
	*s = NewStyleSet(styles...)
	return nil
}
