package document

import (
	"fmt"
	"strings"
)

// DefaultChangeLogSize is the default number of version steps a document
// remembers for position remapping.
const DefaultChangeLogSize = 256

// Option configures a Document during creation.
type Option func(*Document)

// WithChangeLogSize sets how many version steps the change log keeps.
func WithChangeLogSize(size int) Option {
	return func(d *Document) {
		if size > 0 {
			d.logSize = size
		}
	}
}

// WithVersion sets the initial version. Used when a loaded document replaces
// an existing one so versions keep increasing.
func WithVersion(version uint64) Option {
	return func(d *Document) {
		d.version = version
	}
}

// Document is an immutable, versioned sequence of blocks.
// A document always has at least one block.
type Document struct {
	blocks  []*Block
	index   map[BlockID]int
	version uint64
	changes []Change
	logSize int
}

// New creates a document holding a single empty paragraph.
func New(opts ...Option) *Document {
	d, _ := NewFromBlocks(nil, opts...)
	return d
}

// NewFromBlocks creates a document from blocks.
// It fails with ErrDuplicateBlock if two blocks share an id. An empty list
// yields a single empty paragraph.
func NewFromBlocks(blocks []*Block, opts ...Option) (*Document, error) {
	d := &Document{logSize: DefaultChangeLogSize}
	for _, opt := range opts {
		opt(d)
	}
	if len(blocks) == 0 {
		blocks = []*Block{NewBlock("", BlockParagraph)}
	}
	d.blocks = make([]*Block, len(blocks))
	copy(d.blocks, blocks)
	d.index = make(map[BlockID]int, len(blocks))
	for i, b := range d.blocks {
		if b == nil {
			return nil, fmt.Errorf("block %d is nil: %w", i, ErrInvalidTransform)
		}
		if _, dup := d.index[b.id]; dup {
			return nil, fmt.Errorf("block %s: %w", b.id, ErrDuplicateBlock)
		}
		d.index[b.id] = i
	}
	return d, nil
}

// Version returns the document version.
func (d *Document) Version() uint64 {
	return d.version
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	return len(d.blocks)
}

// Blocks returns the blocks in order.
// The returned slice is a copy; the blocks themselves are immutable.
func (d *Document) Blocks() []*Block {
	out := make([]*Block, len(d.blocks))
	copy(out, d.blocks)
	return out
}

// BlockAt returns the block at index i, or nil if out of range.
func (d *Document) BlockAt(i int) *Block {
	if i < 0 || i >= len(d.blocks) {
		return nil
	}
	return d.blocks[i]
}

// First returns the first block.
func (d *Document) First() *Block {
	return d.blocks[0]
}

// Last returns the last block.
func (d *Document) Last() *Block {
	return d.blocks[len(d.blocks)-1]
}

// Block returns the block with the given id.
func (d *Document) Block(id BlockID) (*Block, error) {
	i, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("block %s: %w", id, ErrUnknownBlock)
	}
	return d.blocks[i], nil
}

// Index returns the position of a block in the document.
func (d *Document) Index(id BlockID) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Has reports whether the document contains a block with the given id.
func (d *Document) Has(id BlockID) bool {
	_, ok := d.index[id]
	return ok
}

// Text returns the document text with blocks separated by newlines.
func (d *Document) Text() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n")
}

// Equal reports whether two documents have the same blocks in the same
// order. Versions and change logs are not compared.
func (d *Document) Equal(other *Document) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil || len(d.blocks) != len(other.blocks) {
		return false
	}
	for i := range d.blocks {
		if !d.blocks[i].Equal(other.blocks[i]) {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the document.
func (d *Document) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "v%d", d.version)
	for _, b := range d.blocks {
		sb.WriteString("\n  ")
		sb.WriteString(b.String())
	}
	return sb.String()
}

// derive builds the successor document from a new block list and the
// change that produced it.
func (d *Document) derive(blocks []*Block, change Change) *Document {
	nd := &Document{
		blocks:  blocks,
		version: d.version + 1,
		logSize: d.logSize,
	}
	nd.index = make(map[BlockID]int, len(blocks))
	for i, b := range blocks {
		nd.index[b.id] = i
	}

	change.Version = nd.version
	keep := d.changes
	if len(keep) >= d.logSize {
		keep = keep[len(keep)-d.logSize+1:]
	}
	nd.changes = make([]Change, len(keep), len(keep)+1)
	copy(nd.changes, keep)
	nd.changes = append(nd.changes, change)
	return nd
}

// replaceAt returns a copy of the block list with index i replaced.
func (d *Document) replaceAt(i int, b *Block) []*Block {
	out := make([]*Block, len(d.blocks))
	copy(out, d.blocks)
	out[i] = b
	return out
}
