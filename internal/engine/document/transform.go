package document

import (
	"fmt"
	"unicode/utf8"
)

// TransformKind identifies the kind of edit a Transform describes.
type TransformKind string

// Transform kinds.
const (
	KindInsertText      TransformKind = "insert-text"
	KindInsertFragment  TransformKind = "insert-fragment"
	KindDeleteRange     TransformKind = "delete-range"
	KindReplaceFragment TransformKind = "replace-fragment"
	KindSetBlockType    TransformKind = "set-block-type"
	KindApplyStyle      TransformKind = "apply-style"
	KindSplitBlock      TransformKind = "split-block"
	KindMergeBlocks     TransformKind = "merge-blocks"
	KindInsertBlock     TransformKind = "insert-block"
	KindRemoveBlock     TransformKind = "remove-block"
)

// Transform is an atomic, serializable description of a document edit.
// Transforms are values; construct them with the functions below and treat
// them as immutable.
//
// Field use by kind:
//
//	insert-text       Block, Start (offset), Text
//	insert-fragment   Block, Start (offset), Runs
//	delete-range      Block, Start, End
//	replace-fragment  Block, Start, End, Runs
//	set-block-type    Block, Type
//	apply-style       Block, Start, End, Style, Add
//	split-block       Block, Start (offset), Target (new id), Type (tail type, empty inherits)
//	merge-blocks      Block, Target (the following block, removed)
//	insert-block      Block (new id), Target (insert after; empty for first), Type, Runs
//	remove-block      Block
type Transform struct {
	Kind   TransformKind `json:"kind"`
	Block  BlockID       `json:"block"`
	Start  int           `json:"start,omitempty"`
	End    int           `json:"end,omitempty"`
	Text   string        `json:"text,omitempty"`
	Runs   []Run         `json:"runs,omitempty"`
	Type   BlockType     `json:"type,omitempty"`
	Style  Style         `json:"style,omitempty"`
	Add    bool          `json:"add,omitempty"`
	Target BlockID       `json:"target,omitempty"`
}

// InsertText inserts text at offset; the text inherits the style of the
// preceding character.
func InsertText(block BlockID, offset int, text string) Transform {
	return Transform{Kind: KindInsertText, Block: block, Start: offset, Text: text}
}

// InsertFragment inserts explicitly styled runs at offset.
func InsertFragment(block BlockID, offset int, runs []Run) Transform {
	return Transform{Kind: KindInsertFragment, Block: block, Start: offset, Runs: cloneRuns(runs)}
}

// DeleteRange removes [start, end) from a block.
func DeleteRange(block BlockID, start, end int) Transform {
	return Transform{Kind: KindDeleteRange, Block: block, Start: start, End: end}
}

// ReplaceFragment replaces [start, end) with runs.
func ReplaceFragment(block BlockID, start, end int, runs []Run) Transform {
	return Transform{Kind: KindReplaceFragment, Block: block, Start: start, End: end, Runs: cloneRuns(runs)}
}

// SetBlockType changes a block's type tag.
func SetBlockType(block BlockID, typ BlockType) Transform {
	return Transform{Kind: KindSetBlockType, Block: block, Type: typ}
}

// ApplyStyle adds (add=true) or removes style over [start, end).
func ApplyStyle(block BlockID, start, end int, style Style, add bool) Transform {
	return Transform{Kind: KindApplyStyle, Block: block, Start: start, End: end, Style: style, Add: add}
}

// SplitBlock splits a block at offset. The tail becomes block next with
// type typ, or the original type when typ is empty.
func SplitBlock(block BlockID, offset int, next BlockID, typ BlockType) Transform {
	return Transform{Kind: KindSplitBlock, Block: block, Start: offset, Target: next, Type: typ}
}

// MergeBlocks appends the runs of next to block and removes next.
// next must directly follow block.
func MergeBlocks(block, next BlockID) Transform {
	return Transform{Kind: KindMergeBlocks, Block: block, Target: next}
}

// InsertBlock inserts a new block after the block with id after, or at the
// beginning of the document when after is empty.
func InsertBlock(after, block BlockID, typ BlockType, runs []Run) Transform {
	return Transform{Kind: KindInsertBlock, Block: block, Target: after, Type: typ, Runs: cloneRuns(runs)}
}

// RemoveBlock removes a block.
func RemoveBlock(block BlockID) Transform {
	return Transform{Kind: KindRemoveBlock, Block: block}
}

// Description returns a short human-readable description.
func (t Transform) Description() string {
	switch t.Kind {
	case KindInsertText:
		if utf8.RuneCountInString(t.Text) <= 20 {
			return fmt.Sprintf("Insert %q", t.Text)
		}
		return fmt.Sprintf("Insert %d characters", utf8.RuneCountInString(t.Text))
	case KindInsertFragment:
		return fmt.Sprintf("Insert %d characters", RunsLen(t.Runs))
	case KindDeleteRange:
		return fmt.Sprintf("Delete %d characters", t.End-t.Start)
	case KindReplaceFragment:
		return fmt.Sprintf("Replace %d with %d characters", t.End-t.Start, RunsLen(t.Runs))
	case KindSetBlockType:
		return fmt.Sprintf("Set block type %s", t.Type)
	case KindApplyStyle:
		if t.Add {
			return fmt.Sprintf("Apply %s", t.Style)
		}
		return fmt.Sprintf("Remove %s", t.Style)
	case KindSplitBlock:
		return "Split block"
	case KindMergeBlocks:
		return "Merge blocks"
	case KindInsertBlock:
		return "Insert block"
	case KindRemoveBlock:
		return "Remove block"
	default:
		return string(t.Kind)
	}
}

// String returns a compact representation for debugging.
func (t Transform) String() string {
	switch t.Kind {
	case KindInsertText:
		return fmt.Sprintf("%s(%s@%d, %q)", t.Kind, t.Block, t.Start, t.Text)
	case KindInsertFragment:
		return fmt.Sprintf("%s(%s@%d, %v)", t.Kind, t.Block, t.Start, t.Runs)
	case KindDeleteRange:
		return fmt.Sprintf("%s(%s[%d:%d))", t.Kind, t.Block, t.Start, t.End)
	case KindReplaceFragment:
		return fmt.Sprintf("%s(%s[%d:%d), %v)", t.Kind, t.Block, t.Start, t.End, t.Runs)
	case KindSetBlockType:
		return fmt.Sprintf("%s(%s, %s)", t.Kind, t.Block, t.Type)
	case KindApplyStyle:
		return fmt.Sprintf("%s(%s[%d:%d), %s, %t)", t.Kind, t.Block, t.Start, t.End, t.Style, t.Add)
	case KindSplitBlock:
		return fmt.Sprintf("%s(%s@%d -> %s)", t.Kind, t.Block, t.Start, t.Target)
	case KindMergeBlocks:
		return fmt.Sprintf("%s(%s <- %s)", t.Kind, t.Block, t.Target)
	case KindInsertBlock:
		return fmt.Sprintf("%s(%s after %q)", t.Kind, t.Block, t.Target)
	default:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Block)
	}
}

func cloneRuns(runs []Run) []Run {
	if runs == nil {
		return nil
	}
	out := make([]Run, len(runs))
	copy(out, runs)
	return out
}
