// Package intent turns edit intents into document transforms.
//
// An Intent is an external request to change the document: a typed
// character, pasted text, a backward or forward delete, a manual style
// toggle, Enter, or a block type change. Handler.Handle is the only path
// by which input changes a document:
//
//	res, err := h.Handle(doc, sel, intent.InsertCharacter("a"))
//	doc, sel = res.Document, res.Selection
//
// Handle first clamps the selection to the document, remapping it if it
// was computed against an older version. A non-collapsed selection is
// deleted before anything is inserted. Deleting backward or forward
// removes a whole grapheme cluster, so combining sequences and emoji never
// split.
//
// After the raw edit the shorthand formatter runs exactly once on the
// focus block. The raw edit and the formatter pass are returned as
// separate history entries in Result.Steps so each undoes on its own.
package intent
