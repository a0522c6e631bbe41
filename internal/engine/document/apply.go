package document

import (
	"fmt"
	"unicode/utf8"
)

// Apply applies a transform and returns the resulting document.
// The input document is never modified.
func Apply(d *Document, t Transform) (*Document, error) {
	nd, _, err := ApplyWithInverse(d, t)
	return nd, err
}

// ApplyAll applies transforms in order. It returns the final document and
// the inverse of each transform, in application order. On error the input
// document is returned unchanged together with the error.
func ApplyAll(d *Document, ts []Transform) (*Document, []Transform, error) {
	cur := d
	inverses := make([]Transform, 0, len(ts))
	for i, t := range ts {
		nd, inv, err := ApplyWithInverse(cur, t)
		if err != nil {
			return d, nil, fmt.Errorf("transform %d (%s): %w", i, t.Kind, err)
		}
		cur = nd
		inverses = append(inverses, inv)
	}
	return cur, inverses, nil
}

// ApplyWithInverse applies a transform and also returns the transform that
// exactly undoes it when applied to the result.
func ApplyWithInverse(d *Document, t Transform) (*Document, Transform, error) {
	switch t.Kind {
	case KindInsertText:
		return d.applyInsertText(t)
	case KindInsertFragment:
		return d.applyInsertFragment(t)
	case KindDeleteRange:
		return d.applyDeleteRange(t)
	case KindReplaceFragment:
		return d.applyReplaceFragment(t)
	case KindSetBlockType:
		return d.applySetBlockType(t)
	case KindApplyStyle:
		return d.applyStyle(t)
	case KindSplitBlock:
		return d.applySplit(t)
	case KindMergeBlocks:
		return d.applyMerge(t)
	case KindInsertBlock:
		return d.applyInsertBlock(t)
	case KindRemoveBlock:
		return d.applyRemoveBlock(t)
	default:
		return nil, Transform{}, fmt.Errorf("kind %q: %w", t.Kind, ErrInvalidTransform)
	}
}

func (d *Document) lookup(id BlockID) (int, *Block, error) {
	i, ok := d.index[id]
	if !ok {
		return 0, nil, fmt.Errorf("block %s: %w", id, ErrUnknownBlock)
	}
	return i, d.blocks[i], nil
}

func (d *Document) applyInsertText(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	nb, err := b.insertText(t.Start, t.Text)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("insert text: %w", err)
	}
	n := utf8.RuneCountInString(t.Text)
	change := Change{Kind: t.Kind, Block: b.id, Offset: t.Start, Inserted: n}
	return d.derive(d.replaceAt(i, nb), change), DeleteRange(b.id, t.Start, t.Start+n), nil
}

func (d *Document) applyInsertFragment(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	nb, err := b.insertRuns(t.Start, t.Runs)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("insert fragment: %w", err)
	}
	n := RunsLen(t.Runs)
	change := Change{Kind: t.Kind, Block: b.id, Offset: t.Start, Inserted: n}
	return d.derive(d.replaceAt(i, nb), change), DeleteRange(b.id, t.Start, t.Start+n), nil
}

func (d *Document) applyDeleteRange(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	nb, removed, err := b.deleteRange(t.Start, t.End)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("delete range: %w", err)
	}
	change := Change{Kind: t.Kind, Block: b.id, Offset: t.Start, Removed: t.End - t.Start}
	return d.derive(d.replaceAt(i, nb), change), InsertFragment(b.id, t.Start, removed), nil
}

func (d *Document) applyReplaceFragment(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	cut, removed, err := b.deleteRange(t.Start, t.End)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("replace fragment: %w", err)
	}
	nb, err := cut.insertRuns(t.Start, t.Runs)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("replace fragment: %w", err)
	}
	n := RunsLen(t.Runs)
	change := Change{
		Kind:     t.Kind,
		Block:    b.id,
		Offset:   t.Start,
		Removed:  t.End - t.Start,
		Inserted: n,
		Restyle:  RunsText(t.Runs) == RunsText(removed),
	}
	return d.derive(d.replaceAt(i, nb), change), ReplaceFragment(b.id, t.Start, t.Start+n, removed), nil
}

func (d *Document) applySetBlockType(t Transform) (*Document, Transform, error) {
	if t.Type == "" {
		return nil, Transform{}, fmt.Errorf("set block type: empty type: %w", ErrInvalidTransform)
	}
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	change := Change{Kind: t.Kind, Block: b.id}
	return d.derive(d.replaceAt(i, b.withType(t.Type)), change), SetBlockType(b.id, b.typ), nil
}

func (d *Document) applyStyle(t Transform) (*Document, Transform, error) {
	if t.Style == "" {
		return nil, Transform{}, fmt.Errorf("apply style: empty style: %w", ErrInvalidTransform)
	}
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	original, err := b.Fragment(t.Start, t.End)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("apply style: %w", err)
	}
	nb, err := b.applyStyle(t.Start, t.End, t.Style, t.Add)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("apply style: %w", err)
	}
	change := Change{Kind: t.Kind, Block: b.id, Offset: t.Start}
	return d.derive(d.replaceAt(i, nb), change), ReplaceFragment(b.id, t.Start, t.End, original), nil
}

func (d *Document) applySplit(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	if t.Target == "" {
		return nil, Transform{}, fmt.Errorf("split block: missing target id: %w", ErrInvalidTransform)
	}
	if d.Has(t.Target) {
		return nil, Transform{}, fmt.Errorf("split block: %s: %w", t.Target, ErrDuplicateBlock)
	}
	head, tail, err := b.split(t.Start, t.Target, t.Type)
	if err != nil {
		return nil, Transform{}, fmt.Errorf("split block: %w", err)
	}
	blocks := make([]*Block, 0, len(d.blocks)+1)
	blocks = append(blocks, d.blocks[:i]...)
	blocks = append(blocks, head, tail)
	blocks = append(blocks, d.blocks[i+1:]...)
	change := Change{Kind: t.Kind, Block: b.id, Offset: t.Start, Target: t.Target}
	return d.derive(blocks, change), MergeBlocks(b.id, t.Target), nil
}

func (d *Document) applyMerge(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	j, next, err := d.lookup(t.Target)
	if err != nil {
		return nil, Transform{}, err
	}
	if j != i+1 {
		return nil, Transform{}, fmt.Errorf("merge blocks: %s does not follow %s: %w", next.id, b.id, ErrRange)
	}
	blocks := make([]*Block, 0, len(d.blocks)-1)
	blocks = append(blocks, d.blocks[:i]...)
	blocks = append(blocks, b.join(next))
	blocks = append(blocks, d.blocks[j+1:]...)
	change := Change{Kind: t.Kind, Block: b.id, Target: next.id, Join: b.length}
	return d.derive(blocks, change), SplitBlock(b.id, b.length, next.id, next.typ), nil
}

func (d *Document) applyInsertBlock(t Transform) (*Document, Transform, error) {
	if t.Block == "" {
		return nil, Transform{}, fmt.Errorf("insert block: missing id: %w", ErrInvalidTransform)
	}
	if d.Has(t.Block) {
		return nil, Transform{}, fmt.Errorf("insert block: %s: %w", t.Block, ErrDuplicateBlock)
	}
	at := 0
	if t.Target != "" {
		i, _, err := d.lookup(t.Target)
		if err != nil {
			return nil, Transform{}, err
		}
		at = i + 1
	}
	nb := NewBlock(t.Block, t.Type, t.Runs...)
	blocks := make([]*Block, 0, len(d.blocks)+1)
	blocks = append(blocks, d.blocks[:at]...)
	blocks = append(blocks, nb)
	blocks = append(blocks, d.blocks[at:]...)
	change := Change{Kind: t.Kind, Block: nb.id}
	return d.derive(blocks, change), RemoveBlock(nb.id), nil
}

func (d *Document) applyRemoveBlock(t Transform) (*Document, Transform, error) {
	i, b, err := d.lookup(t.Block)
	if err != nil {
		return nil, Transform{}, err
	}
	if len(d.blocks) == 1 {
		return nil, Transform{}, fmt.Errorf("remove block %s: last block: %w", b.id, ErrRange)
	}
	var after BlockID
	change := Change{Kind: t.Kind, Block: b.id}
	if i > 0 {
		prev := d.blocks[i-1]
		after = prev.id
		change.Target, change.Join = prev.id, prev.length
	} else {
		change.Target = d.blocks[1].id
	}
	blocks := make([]*Block, 0, len(d.blocks)-1)
	blocks = append(blocks, d.blocks[:i]...)
	blocks = append(blocks, d.blocks[i+1:]...)
	return d.derive(blocks, change), InsertBlock(after, b.id, b.typ, b.runs), nil
}
