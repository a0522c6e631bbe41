package codec

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/inkwell/internal/engine/document"
)

type wireDocument struct {
	Blocks []wireBlock `json:"blocks"`
}

type wireBlock struct {
	ID   document.BlockID   `json:"id"`
	Type document.BlockType `json:"type"`
	Text *string            `json:"text,omitempty"`
	Runs []wireRun          `json:"runs"`
}

type wireRun struct {
	Text   string           `json:"text"`
	Styles []document.Style `json:"styles"`
}

// Marshal encodes doc in the native JSON format.
func Marshal(doc *document.Document) ([]byte, error) {
	return json.Marshal(toWire(doc))
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(doc *document.Document) ([]byte, error) {
	return json.MarshalIndent(toWire(doc), "", "  ")
}

func toWire(doc *document.Document) wireDocument {
	w := wireDocument{Blocks: make([]wireBlock, 0, doc.Len())}
	for _, b := range doc.Blocks() {
		wb := wireBlock{ID: b.ID(), Type: b.Type(), Runs: make([]wireRun, 0, b.RunCount())}
		for _, r := range b.Runs() {
			styles := r.Styles.Styles()
			if styles == nil {
				styles = []document.Style{}
			}
			wb.Runs = append(wb.Runs, wireRun{Text: r.Text, Styles: styles})
		}
		w.Blocks = append(w.Blocks, wb)
	}
	return w
}

// Unmarshal decodes a document in the native JSON format.
// opts are passed to document.NewFromBlocks; callers replacing a live
// document pass document.WithVersion so versions keep increasing.
//
// Every structural problem wraps document.ErrCorruptState: malformed JSON,
// no blocks, a block without id or type, an empty or invalid run, a text
// field that disagrees with the runs, or a repeated block id.
func Unmarshal(data []byte, opts ...document.Option) (*document.Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, corrupt("decode: %v", err)
	}
	if len(w.Blocks) == 0 {
		return nil, corrupt("no blocks")
	}

	blocks := make([]*document.Block, 0, len(w.Blocks))
	for i, wb := range w.Blocks {
		b, err := fromWire(wb)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}

	doc, err := document.NewFromBlocks(blocks, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrCorruptState, err)
	}
	return doc, nil
}

func fromWire(wb wireBlock) (*document.Block, error) {
	if wb.ID == "" {
		return nil, corrupt("missing id")
	}
	if wb.Type == "" {
		return nil, corrupt("block %s: missing type", wb.ID)
	}
	runs := make([]document.Run, 0, len(wb.Runs))
	for j, wr := range wb.Runs {
		if wr.Text == "" {
			return nil, corrupt("block %s run %d: empty text", wb.ID, j)
		}
		if !utf8.ValidString(wr.Text) {
			return nil, corrupt("block %s run %d: invalid UTF-8", wb.ID, j)
		}
		for _, s := range wr.Styles {
			if s == "" {
				return nil, corrupt("block %s run %d: empty style", wb.ID, j)
			}
		}
		runs = append(runs, document.NewRun(wr.Text, wr.Styles...))
	}
	if wb.Text != nil && *wb.Text != document.RunsText(runs) {
		return nil, corrupt("block %s: text does not match runs", wb.ID)
	}
	return document.NewBlock(wb.ID, wb.Type, runs...), nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), document.ErrCorruptState)
}
