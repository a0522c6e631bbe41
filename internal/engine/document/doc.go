// Package document provides the immutable rich-text document model for the
// Inkwell engine.
//
// A Document is an ordered list of Blocks. Each Block carries a stable
// identifier, a block-type tag and a list of Runs, where a Run is a span of
// text sharing one StyleSet. Runs inside a block are always kept maximally
// merged: no run is empty and no two adjacent runs carry the same styles.
//
// Documents never change in place. Every edit is described by a Transform
// and applied with Apply or ApplyWithInverse, which return a new Document
// that shares all untouched blocks with its predecessor:
//
//	doc := document.New()
//	id := doc.First().ID()
//
//	doc, _ = document.Apply(doc, document.InsertText(id, 0, "Hello"))
//	doc, inv, _ := document.ApplyWithInverse(doc,
//	    document.ApplyStyle(id, 0, 5, document.StyleBold, true))
//
//	// inv restores the styles exactly
//	doc, _ = document.Apply(doc, inv)
//
// # Offsets
//
// Offsets are counted in Unicode code points within a block, in the range
// [0, Block.Len()].
//
// # Versions and the change log
//
// Each applied transform produces a document whose Version is exactly one
// greater than its input. Documents also carry a bounded change log that
// records how positions move at each version step, which lets callers remap
// positions computed against an earlier version (see MapPosition).
//
// # Thread Safety
//
// Document, Block, Run and StyleSet are immutable values and safe for
// concurrent reads.
package document
