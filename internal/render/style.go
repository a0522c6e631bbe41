package render

import (
	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine/document"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint/dim text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrReverse                 // Reverse video (swap fg/bg)
	AttrStrikethrough           // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style represents the visual style of text.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{
		Foreground: ColorDefault,
		Background: ColorDefault,
		Attributes: AttrNone,
	}
}

// Merge combines two styles.
// The other style takes precedence for non-default colors.
// Attributes are OR'd together.
func (s Style) Merge(other Style) Style {
	result := s
	if !other.Foreground.IsDefault() {
		result.Foreground = other.Foreground
	}
	if !other.Background.IsDefault() {
		result.Background = other.Background
	}
	result.Attributes |= other.Attributes
	return result
}

// IsDefault returns true if this is the default style.
func (s Style) IsDefault() bool {
	return s.Foreground.IsDefault() &&
		s.Background.IsDefault() &&
		s.Attributes == AttrNone
}

// Theme maps inline styles to terminal styles.
type Theme map[document.Style]Style

// DefaultTheme returns the built-in theme. redLine draws in red.
func DefaultTheme() Theme {
	plain := DefaultStyle()
	with := func(a Attribute) Style {
		s := plain
		s.Attributes = a
		return s
	}
	red := plain
	red.Foreground = ColorRed
	code := plain
	code.Foreground = ColorGray

	return Theme{
		document.StyleBold:          with(AttrBold),
		document.StyleItalic:        with(AttrItalic),
		document.StyleUnderline:     with(AttrUnderline),
		document.StyleStrikethrough: with(AttrStrikethrough),
		document.StyleCode:          code,
		document.StyleRedLine:       red,
	}
}

// ThemeFromConfig returns the default theme with the configured styles
// replacing built-in entries.
func ThemeFromConfig(styles map[string]config.StyleConfig) (Theme, error) {
	theme := DefaultTheme()
	for name, sc := range styles {
		s := DefaultStyle()
		if sc.Color != "" {
			c, err := ColorFromHex(sc.Color)
			if err != nil {
				return nil, err
			}
			s.Foreground = c
		}
		if sc.Background != "" {
			c, err := ColorFromHex(sc.Background)
			if err != nil {
				return nil, err
			}
			s.Background = c
		}
		if sc.Bold {
			s.Attributes |= AttrBold
		}
		if sc.Italic {
			s.Attributes |= AttrItalic
		}
		if sc.Underline {
			s.Attributes |= AttrUnderline
		}
		if sc.Strikethrough {
			s.Attributes |= AttrStrikethrough
		}
		theme[document.Style(name)] = s
	}
	return theme, nil
}

// Resolve returns the combined style for a set of inline styles.
// Styles without a theme entry render plain.
func (t Theme) Resolve(set document.StyleSet) Style {
	s := DefaultStyle()
	for _, st := range set.Styles() {
		if ts, ok := t[st]; ok {
			s = s.Merge(ts)
		}
	}
	return s
}
