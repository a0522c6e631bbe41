// Package engine provides the rich-text editor core for Inkwell.
//
// The engine package serves as the main facade, combining the immutable
// document model, selections, intent handling, shorthand formatting,
// undo/redo history and persistence into a unified, thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - document: immutable versioned blocks of styled runs, and the
//     invertible transforms that derive new documents
//   - selection: anchor/focus positions stamped with a document version,
//     remapped and clamped against newer documents
//   - intent: user edit requests (typing, deletion, style toggles,
//     splits) translated into transforms
//   - shorthand: the post-edit formatter that turns typed prefixes such
//     as "# " or "* " into block types and styles
//   - history: bounded undo/redo of recorded steps
//
// # Thread Safety
//
// All Editor operations are thread-safe. Mutations serialize on a single
// lock, so each intent's edit and formatter pass complete before the next
// intent starts. Documents are immutable values: a *document.Document
// returned by Document or State never changes and may be read freely.
//
// # Basic Usage
//
//	e, err := engine.New()
//	if err != nil {
//		return err
//	}
//
//	// Typing "# " and then a character formats the block as a heading.
//	e.Type("# Title")
//
//	// The formatter pass is its own history step.
//	e.Undo() // Block text is "# T..." again, as a paragraph
//
// Each intent records up to two history steps: the raw edit, and the
// formatter pass when a rule fired. Undo reverts one step at a time and
// restores the selection that preceded it.
//
// # Persistence
//
// With a store configured, Save writes the current document and Load
// replaces it:
//
//	s, _ := storage.NewFileStore(dir)
//	e, _ := engine.New(engine.WithStore(s, "draftContent"))
//	e.Save(ctx)
//	e.Load(ctx)
//
// Load accepts both the native JSON format and Draft.js raw content. A
// corrupt stored value resets the editor to an empty document and Load
// reports document.ErrCorruptState.
//
// # Observers
//
// OnChange registers a callback that receives every edit, undo, redo,
// load and reset after the editor lock is released:
//
//	cancel := e.OnChange(func(c engine.Change) {
//		render(c.Document, c.Selection)
//	})
//	defer cancel()
package engine
