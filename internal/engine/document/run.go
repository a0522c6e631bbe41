package document

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Run is a contiguous span of text sharing one style set.
type Run struct {
	Text   string   `json:"text"`
	Styles StyleSet `json:"styles"`
}

// NewRun creates a run with the given text and styles.
func NewRun(text string, styles ...Style) Run {
	return Run{Text: text, Styles: NewStyleSet(styles...)}
}

// Len returns the length of the run in code points.
func (r Run) Len() int {
	return utf8.RuneCountInString(r.Text)
}

// String returns a human-readable representation of the run.
func (r Run) String() string {
	if r.Styles.IsEmpty() {
		return fmt.Sprintf("%q", r.Text)
	}
	return fmt.Sprintf("%q%s", r.Text, r.Styles)
}

// RunsText returns the concatenated text of runs.
func RunsText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// RunsLen returns the total length of runs in code points.
func RunsLen(runs []Run) int {
	n := 0
	for _, r := range runs {
		n += r.Len()
	}
	return n
}

// NormalizeRuns returns a new slice with empty runs dropped and adjacent runs
// carrying equal styles merged.
func NormalizeRuns(runs []Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Styles.Equal(r.Styles) {
			out[n-1].Text += r.Text
			continue
		}
		out = append(out, r)
	}
	return out
}

// splitRuns splits runs at a code point offset. Both halves are fresh slices.
// The offset must be within [0, RunsLen(runs)].
func splitRuns(runs []Run, offset int) (left, right []Run) {
	pos := 0
	for i, r := range runs {
		n := r.Len()
		switch {
		case pos+n <= offset:
			left = append(left, r)
		case pos >= offset:
			right = append(right, runs[i:]...)
			return left, right
		default:
			cut := byteIndex(r.Text, offset-pos)
			left = append(left, Run{Text: r.Text[:cut], Styles: r.Styles})
			right = append(right, Run{Text: r.Text[cut:], Styles: r.Styles})
			right = append(right, runs[i+1:]...)
			return left, right
		}
		pos += n
	}
	return left, right
}

// sliceRuns returns the runs covering [start, end).
func sliceRuns(runs []Run, start, end int) []Run {
	_, tail := splitRuns(runs, start)
	mid, _ := splitRuns(tail, end-start)
	return mid
}

// concatRuns joins run lists and normalizes the result.
func concatRuns(parts ...[]Run) []Run {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	all := make([]Run, 0, n)
	for _, p := range parts {
		all = append(all, p...)
	}
	return NormalizeRuns(all)
}

// byteIndex returns the byte index of the n-th code point in s.
func byteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == n {
			return pos
		}
		i++
	}
	return len(s)
}
