package intent

import (
	"errors"
	"fmt"

	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
)

// ErrInvalidIntent indicates a malformed intent.
var ErrInvalidIntent = errors.New("invalid intent")

// Kind identifies an intent.
type Kind string

// Intent kinds.
const (
	KindInsertCharacter Kind = "insert-character"
	KindInsertText      Kind = "insert-text"
	KindDeleteBackward  Kind = "delete-backward"
	KindDeleteForward   Kind = "delete-forward"
	KindDeleteRange     Kind = "delete-range"
	KindToggleStyle     Kind = "toggle-style"
	KindSplitBlock      Kind = "split-block"
	KindSetBlockType    Kind = "set-block-type"
)

// Intent is a request to change the document.
type Intent struct {
	Kind  Kind
	Text  string               // insert-character, insert-text
	Style document.Style       // toggle-style
	Type  document.BlockType   // set-block-type
	Range *selection.Selection // delete-range, toggle-style; nil uses the current selection, Unbound means the current version
}

// InsertCharacter types a single grapheme cluster at the selection.
func InsertCharacter(ch string) Intent {
	return Intent{Kind: KindInsertCharacter, Text: ch}
}

// InsertText inserts text at the selection. Newlines split blocks.
func InsertText(text string) Intent {
	return Intent{Kind: KindInsertText, Text: text}
}

// DeleteBackward deletes the selection, or the grapheme before the cursor.
func DeleteBackward() Intent {
	return Intent{Kind: KindDeleteBackward}
}

// DeleteForward deletes the selection, or the grapheme after the cursor.
func DeleteForward() Intent {
	return Intent{Kind: KindDeleteForward}
}

// DeleteRange deletes r. The cursor ends at the start of the range.
func DeleteRange(r selection.Selection) Intent {
	return Intent{Kind: KindDeleteRange, Range: &r}
}

// ToggleStyle toggles style over the current selection.
func ToggleStyle(style document.Style) Intent {
	return Intent{Kind: KindToggleStyle, Style: style}
}

// ToggleStyleIn toggles style over r.
func ToggleStyleIn(style document.Style, r selection.Selection) Intent {
	return Intent{Kind: KindToggleStyle, Style: style, Range: &r}
}

// SplitBlock splits the focus block at the cursor, as Enter does.
func SplitBlock() Intent {
	return Intent{Kind: KindSplitBlock}
}

// SetBlockType sets the type of every block the selection touches.
func SetBlockType(typ document.BlockType) Intent {
	return Intent{Kind: KindSetBlockType, Type: typ}
}

// Validate checks the intent's fields for its kind.
func (in Intent) Validate() error {
	switch in.Kind {
	case KindInsertCharacter:
		if n := graphemeCount(in.Text); n != 1 {
			return fmt.Errorf("%s: %d grapheme clusters in %q: %w", in.Kind, n, in.Text, ErrInvalidIntent)
		}
	case KindToggleStyle:
		if in.Style == "" {
			return fmt.Errorf("%s: missing style: %w", in.Kind, ErrInvalidIntent)
		}
	case KindSetBlockType:
		if in.Type == "" {
			return fmt.Errorf("%s: missing block type: %w", in.Kind, ErrInvalidIntent)
		}
	case KindInsertText, KindDeleteBackward, KindDeleteForward, KindDeleteRange, KindSplitBlock:
	default:
		return fmt.Errorf("kind %q: %w", in.Kind, ErrInvalidIntent)
	}
	return nil
}

// String returns a human-readable representation of the intent.
func (in Intent) String() string {
	switch in.Kind {
	case KindInsertCharacter, KindInsertText:
		return fmt.Sprintf("%s %q", in.Kind, in.Text)
	case KindToggleStyle:
		return fmt.Sprintf("%s %s", in.Kind, in.Style)
	case KindSetBlockType:
		return fmt.Sprintf("%s %s", in.Kind, in.Type)
	}
	return string(in.Kind)
}

// label returns the history label for the intent's raw edit.
func (in Intent) label() string {
	switch in.Kind {
	case KindInsertCharacter, KindInsertText:
		return "Typing"
	case KindDeleteBackward, KindDeleteForward, KindDeleteRange:
		return "Delete"
	case KindToggleStyle:
		return "Toggle " + string(in.Style)
	case KindSplitBlock:
		return "New block"
	case KindSetBlockType:
		return "Set " + string(in.Type)
	}
	return string(in.Kind)
}
