package render

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Profile is the color capability of an output.
type Profile int

const (
	// ProfileNone writes no escape sequences.
	ProfileNone Profile = iota
	// Profile256 uses the xterm 256-color palette.
	Profile256
	// ProfileTrueColor uses 24-bit color.
	ProfileTrueColor
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case Profile256:
		return "256"
	case ProfileTrueColor:
		return "truecolor"
	}
	return "none"
}

// DetectProfile reports the profile for f. Output that is not a terminal,
// or any output when NO_COLOR is set, gets ProfileNone.
func DetectProfile(f *os.File) Profile {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ProfileNone
	}
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return ProfileNone
	}
	switch strings.ToLower(os.Getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return ProfileTrueColor
	}
	return Profile256
}

const sgrReset = "\x1b[0m"

// sgr returns the escape sequence selecting s, or "" for the default style.
func (p Profile) sgr(s Style) string {
	if p == ProfileNone || s.IsDefault() {
		return ""
	}

	var params []string
	attrs := []struct {
		attr Attribute
		code string
	}{
		{AttrBold, "1"},
		{AttrDim, "2"},
		{AttrItalic, "3"},
		{AttrUnderline, "4"},
		{AttrReverse, "7"},
		{AttrStrikethrough, "9"},
	}
	for _, a := range attrs {
		if s.Attributes.Has(a.attr) {
			params = append(params, a.code)
		}
	}
	if !s.Foreground.IsDefault() {
		params = append(params, p.color("38", s.Foreground))
	}
	if !s.Background.IsDefault() {
		params = append(params, p.color("48", s.Background))
	}
	return "\x1b[" + strings.Join(params, ";") + "m"
}

func (p Profile) color(base string, c Color) string {
	if p == ProfileTrueColor {
		return base + ";2;" + strconv.Itoa(int(c.R)) + ";" + strconv.Itoa(int(c.G)) + ";" + strconv.Itoa(int(c.B))
	}
	return base + ";5;" + strconv.Itoa(int(c.Index256()))
}
