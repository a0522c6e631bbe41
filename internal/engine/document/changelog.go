package document

// Change records how positions move across one version step.
// It is derived from the applied transform and the state it was applied to.
type Change struct {
	Version  uint64        // Version produced by the step
	Kind     TransformKind // Kind of the applied transform
	Block    BlockID       // Block the edit targeted
	Offset   int           // Start of the edited range
	Removed  int           // Code points removed at Offset
	Inserted int           // Code points inserted at Offset
	Target   BlockID       // split: new block; merge: absorbed block; remove: fallback block
	Join     int           // merge: length of Block before the merge; remove: fallback offset
	Restyle  bool          // replace-fragment that kept the text and changed only styles
}

// MapOffset maps a position valid before the change to one valid after it.
func (c Change) MapOffset(block BlockID, offset int) (BlockID, int) {
	switch c.Kind {
	case KindInsertText, KindInsertFragment, KindDeleteRange, KindReplaceFragment:
		if block != c.Block {
			return block, offset
		}
		if c.Restyle {
			return block, offset
		}
		return block, mapOffset(offset, c.Offset, c.Offset+c.Removed, c.Inserted)
	case KindSplitBlock:
		if block == c.Block && offset >= c.Offset {
			return c.Target, offset - c.Offset
		}
		return block, offset
	case KindMergeBlocks:
		if block == c.Target {
			return c.Block, c.Join + offset
		}
		return block, offset
	case KindRemoveBlock:
		if block == c.Block {
			return c.Target, c.Join
		}
		return block, offset
	default:
		return block, offset
	}
}

// mapOffset moves offset across a replacement of [start, end) by text of
// length inserted:
//   - replacement entirely before offset: shift by the length delta
//   - replacement at or after offset: unchanged
//   - replacement spanning offset: move to the end of the new text
func mapOffset(offset, start, end, inserted int) int {
	if end <= offset {
		return offset - (end - start) + inserted
	}
	if start >= offset {
		return offset
	}
	return start + inserted
}

// Changes returns the changes recorded after version since, oldest first.
// ok is false when since is newer than the document or older than the
// retained log.
func (d *Document) Changes(since uint64) ([]Change, bool) {
	if since == d.version {
		return nil, true
	}
	if since > d.version || len(d.changes) == 0 {
		return nil, false
	}
	first := d.changes[0].Version
	if since+1 < first {
		return nil, false
	}
	start := int(since + 1 - first)
	out := make([]Change, len(d.changes)-start)
	copy(out, d.changes[start:])
	return out, true
}

// MapPosition maps a position computed against version since to the
// current version. ok is false when the change log does not cover since.
func (d *Document) MapPosition(since uint64, block BlockID, offset int) (BlockID, int, bool) {
	changes, ok := d.Changes(since)
	if !ok {
		return block, offset, false
	}
	for _, c := range changes {
		block, offset = c.MapOffset(block, offset)
	}
	return block, offset, true
}
