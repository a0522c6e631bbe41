// Package selection provides the cursor and selection model for Inkwell
// documents.
//
// Positions address a character offset inside a block:
//
//	pos := selection.Position{Block: id, Offset: 3}
//
// A Selection has an anchor (where it started) and a focus (where typing
// occurs). When both are equal the selection is a collapsed cursor.
//
// Every selection is stamped with the document version it was computed
// against. A selection whose version is older than the document is stale;
// ClampToDocument remaps it through the document's change log and clamps
// the result into valid bounds:
//
//	sel = selection.ClampToDocument(sel, doc)
//
// Validate reports problems without repairing them.
//
// Selections are immutable value types and safe for concurrent use.
package selection
