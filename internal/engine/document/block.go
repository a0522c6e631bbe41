package document

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BlockID uniquely identifies a block within a document.
// Ids are stable across versions.
type BlockID string

// NewBlockID returns a fresh random block id.
func NewBlockID() BlockID {
	return BlockID(uuid.NewString())
}

// BlockType tags the structural role of a block.
type BlockType string

// Well-known block types.
const (
	BlockParagraph         BlockType = "paragraph"
	BlockHeaderOne         BlockType = "header-one"
	BlockHeaderTwo         BlockType = "header-two"
	BlockHeaderThree       BlockType = "header-three"
	BlockHeaderFour        BlockType = "header-four"
	BlockHeaderFive        BlockType = "header-five"
	BlockHeaderSix         BlockType = "header-six"
	BlockQuote             BlockType = "blockquote"
	BlockUnorderedListItem BlockType = "unordered-list-item"
	BlockOrderedListItem   BlockType = "ordered-list-item"
	BlockCode              BlockType = "code-block"
)

// IsHeader reports whether the type is one of the header levels.
func (t BlockType) IsHeader() bool {
	return strings.HasPrefix(string(t), "header-")
}

// Block is an ordered paragraph-level unit of a document.
// Blocks are immutable; edits produce new blocks.
type Block struct {
	id     BlockID
	typ    BlockType
	runs   []Run
	length int
}

// NewBlock creates a block. An empty id is replaced by a fresh one and an
// empty type defaults to BlockParagraph. Runs are normalized.
func NewBlock(id BlockID, typ BlockType, runs ...Run) *Block {
	if id == "" {
		id = NewBlockID()
	}
	if typ == "" {
		typ = BlockParagraph
	}
	return newBlock(id, typ, NormalizeRuns(runs))
}

// newBlock builds a block from runs that are already normalized.
func newBlock(id BlockID, typ BlockType, runs []Run) *Block {
	return &Block{id: id, typ: typ, runs: runs, length: RunsLen(runs)}
}

// ID returns the block identifier.
func (b *Block) ID() BlockID {
	return b.id
}

// Type returns the block type tag.
func (b *Block) Type() BlockType {
	return b.typ
}

// Runs returns a copy of the block's runs.
func (b *Block) Runs() []Run {
	out := make([]Run, len(b.runs))
	copy(out, b.runs)
	return out
}

// RunCount returns the number of runs.
func (b *Block) RunCount() int {
	return len(b.runs)
}

// Text returns the block's logical text.
func (b *Block) Text() string {
	return RunsText(b.runs)
}

// Len returns the block length in code points.
func (b *Block) Len() int {
	return b.length
}

// IsEmpty returns true if the block has no text.
func (b *Block) IsEmpty() bool {
	return b.length == 0
}

// StyleAt returns the style a character inserted at offset inherits: the
// style of the run immediately preceding offset, or the empty set at the
// block start.
func (b *Block) StyleAt(offset int) StyleSet {
	if offset <= 0 {
		return StyleSet{}
	}
	pos := 0
	for _, r := range b.runs {
		pos += r.Len()
		if offset <= pos {
			return r.Styles
		}
	}
	if n := len(b.runs); n > 0 {
		return b.runs[n-1].Styles
	}
	return StyleSet{}
}

// Fragment returns the runs covering [start, end).
func (b *Block) Fragment(start, end int) ([]Run, error) {
	if err := b.checkRange(start, end); err != nil {
		return nil, err
	}
	return sliceRuns(b.runs, start, end), nil
}

// Equal reports whether two blocks have the same id, type and runs.
func (b *Block) Equal(other *Block) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	if b.id != other.id || b.typ != other.typ || len(b.runs) != len(other.runs) {
		return false
	}
	for i := range b.runs {
		if b.runs[i].Text != other.runs[i].Text || !b.runs[i].Styles.Equal(other.runs[i].Styles) {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the block.
func (b *Block) String() string {
	parts := make([]string, len(b.runs))
	for i, r := range b.runs {
		parts[i] = r.String()
	}
	return fmt.Sprintf("%s(%s)[%s]", b.typ, b.id, strings.Join(parts, " "))
}

func (b *Block) checkOffset(offset int) error {
	if offset < 0 || offset > b.length {
		return fmt.Errorf("offset %d in block %s of length %d: %w", offset, b.id, b.length, ErrRange)
	}
	return nil
}

func (b *Block) checkRange(start, end int) error {
	if start < 0 || start > end || end > b.length {
		return fmt.Errorf("range [%d,%d) in block %s of length %d: %w", start, end, b.id, b.length, ErrRange)
	}
	return nil
}

// Block edit primitives. Each returns a new block; the receiver is untouched.

func (b *Block) insertText(offset int, text string) (*Block, error) {
	if err := b.checkOffset(offset); err != nil {
		return nil, err
	}
	left, right := splitRuns(b.runs, offset)
	run := Run{Text: text, Styles: b.StyleAt(offset)}
	return newBlock(b.id, b.typ, concatRuns(left, []Run{run}, right)), nil
}

func (b *Block) insertRuns(offset int, runs []Run) (*Block, error) {
	if err := b.checkOffset(offset); err != nil {
		return nil, err
	}
	left, right := splitRuns(b.runs, offset)
	return newBlock(b.id, b.typ, concatRuns(left, runs, right)), nil
}

// deleteRange removes [start, end) and returns the removed runs.
func (b *Block) deleteRange(start, end int) (*Block, []Run, error) {
	if err := b.checkRange(start, end); err != nil {
		return nil, nil, err
	}
	left, tail := splitRuns(b.runs, start)
	removed, right := splitRuns(tail, end-start)
	return newBlock(b.id, b.typ, concatRuns(left, right)), removed, nil
}

func (b *Block) applyStyle(start, end int, style Style, add bool) (*Block, error) {
	if err := b.checkRange(start, end); err != nil {
		return nil, err
	}
	left, tail := splitRuns(b.runs, start)
	mid, right := splitRuns(tail, end-start)
	for i := range mid {
		if add {
			mid[i].Styles = mid[i].Styles.With(style)
		} else {
			mid[i].Styles = mid[i].Styles.Without(style)
		}
	}
	return newBlock(b.id, b.typ, concatRuns(left, mid, right)), nil
}

func (b *Block) withType(typ BlockType) *Block {
	return &Block{id: b.id, typ: typ, runs: b.runs, length: b.length}
}

// split cuts the block at offset. The tail becomes a new block with id next.
func (b *Block) split(offset int, next BlockID, typ BlockType) (*Block, *Block, error) {
	if err := b.checkOffset(offset); err != nil {
		return nil, nil, err
	}
	if typ == "" {
		typ = b.typ
	}
	left, right := splitRuns(b.runs, offset)
	return newBlock(b.id, b.typ, NormalizeRuns(left)), newBlock(next, typ, NormalizeRuns(right)), nil
}

// join appends other's runs to b, keeping b's id and type.
func (b *Block) join(other *Block) *Block {
	return newBlock(b.id, b.typ, concatRuns(b.runs, other.runs))
}
