package codec

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf16"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/inkwell/internal/engine/document"
)

// draftUnstyled is the Draft.js name for a plain paragraph.
const draftUnstyled = "unstyled"

// UnmarshalDraftRaw decodes Draft.js raw content
// ({"blocks":[{"key","text","type","inlineStyleRanges"}],"entityMap":{}}).
// Style range offsets and lengths are in UTF-16 code units. Errors wrap
// document.ErrCorruptState.
func UnmarshalDraftRaw(data []byte, opts ...document.Option) (*document.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, corrupt("draft: invalid JSON")
	}
	raw := gjson.GetBytes(data, "blocks")
	if !raw.IsArray() {
		return nil, corrupt("draft: missing blocks array")
	}

	var blocks []*document.Block
	var err error
	raw.ForEach(func(_, rb gjson.Result) bool {
		var b *document.Block
		b, err = draftBlock(rb)
		if err != nil {
			err = fmt.Errorf("draft block %d: %w", len(blocks), err)
			return false
		}
		blocks = append(blocks, b)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, corrupt("draft: no blocks")
	}

	doc, err := document.NewFromBlocks(blocks, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrCorruptState, err)
	}
	return doc, nil
}

func draftBlock(rb gjson.Result) (*document.Block, error) {
	key := rb.Get("key").String()
	if key == "" {
		return nil, corrupt("missing key")
	}
	typ := rb.Get("type").String()
	switch typ {
	case "", draftUnstyled:
		typ = string(document.BlockParagraph)
	}
	text := rb.Get("text").String()
	runes := []rune(text)
	units := utf16Offsets(runes)

	styles := make([]document.StyleSet, len(runes))
	var err error
	rb.Get("inlineStyleRanges").ForEach(func(_, sr gjson.Result) bool {
		style := document.Style(sr.Get("style").String())
		off, length := int(sr.Get("offset").Int()), int(sr.Get("length").Int())
		if style == "" || off < 0 || length < 0 || off+length > units[len(units)-1] {
			err = corrupt("block %s: bad style range %s", key, sr.Raw)
			return false
		}
		start, end := runeIndex(units, off), runeIndex(units, off+length)
		for i := start; i < end; i++ {
			styles[i] = styles[i].With(style)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	runs := make([]document.Run, 0, len(runes))
	for i, r := range runes {
		runs = append(runs, document.Run{Text: string(r), Styles: styles[i]})
	}
	return document.NewBlock(document.BlockID(key), document.BlockType(typ), runs...), nil
}

// MarshalDraftRaw encodes doc as Draft.js raw content.
func MarshalDraftRaw(doc *document.Document) ([]byte, error) {
	out := []byte(`{"blocks":[],"entityMap":{}}`)
	var err error
	for _, b := range doc.Blocks() {
		typ := string(b.Type())
		if b.Type() == document.BlockParagraph {
			typ = draftUnstyled
		}
		block := map[string]any{
			"key":               string(b.ID()),
			"text":              b.Text(),
			"type":              typ,
			"depth":             0,
			"inlineStyleRanges": draftRanges(b),
			"entityRanges":      []any{},
			"data":              map[string]any{},
		}
		if out, err = sjson.SetBytes(out, "blocks.-1", block); err != nil {
			return nil, fmt.Errorf("draft: block %s: %w", b.ID(), err)
		}
	}
	return out, nil
}

type styleRange struct {
	Offset int            `json:"offset"`
	Length int            `json:"length"`
	Style  document.Style `json:"style"`
}

// draftRanges returns one range per maximal span of each style, ordered
// by offset then style, in UTF-16 units.
func draftRanges(b *document.Block) []styleRange {
	ranges := []styleRange{}
	open := map[document.Style]int{} // style -> index into ranges
	pos := 0
	for _, r := range b.Runs() {
		n := utf16Len(r.Text)
		for _, s := range r.Styles.Styles() {
			if i, ok := open[s]; ok && ranges[i].Offset+ranges[i].Length == pos {
				ranges[i].Length += n
				continue
			}
			open[s] = len(ranges)
			ranges = append(ranges, styleRange{Offset: pos, Length: n, Style: s})
		}
		pos += n
	}
	slices.SortStableFunc(ranges, func(x, y styleRange) int {
		if x.Offset != y.Offset {
			return x.Offset - y.Offset
		}
		return strings.Compare(string(x.Style), string(y.Style))
	})
	return ranges
}

// utf16Offsets returns the UTF-16 offset of each rune, plus the total
// length as the final element.
func utf16Offsets(runes []rune) []int {
	units := make([]int, len(runes)+1)
	for i, r := range runes {
		units[i+1] = units[i] + utf16.RuneLen(r)
	}
	return units
}

// runeIndex maps a UTF-16 offset to a rune index. An offset inside a
// surrogate pair rounds down.
func runeIndex(units []int, off int) int {
	i, found := slices.BinarySearch(units, off)
	if !found {
		i--
	}
	return i
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
