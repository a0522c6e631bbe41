package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rivo/uniseg"

	"github.com/dshills/inkwell/internal/codec"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/history"
	"github.com/dshills/inkwell/internal/engine/intent"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/engine/shorthand"
	"github.com/dshills/inkwell/internal/storage"
)

// Re-export commonly used types for convenience.
type (
	// Document is an immutable versioned document.
	Document = document.Document

	// Selection is an anchor/focus pair stamped with a document version.
	Selection = selection.Selection

	// Intent is a user edit request.
	Intent = intent.Intent

	// Rule is a shorthand formatting rule.
	Rule = shorthand.Rule
)

// ChangeKind categorizes editor state changes.
type ChangeKind string

// Change kinds delivered to observers.
const (
	ChangeEdit  ChangeKind = "edit"
	ChangeUndo  ChangeKind = "undo"
	ChangeRedo  ChangeKind = "redo"
	ChangeLoad  ChangeKind = "load"
	ChangeReset ChangeKind = "reset"
)

// Change describes one editor state change.
type Change struct {
	Kind      ChangeKind
	Document  *document.Document
	Selection selection.Selection
	Steps     []history.Entry // Entries recorded (edit) or replayed (undo, redo)
	Formatted bool            // A shorthand rule fired during the edit
	Rule      shorthand.Rule  // Rule that fired
}

// Version returns the version of the document after the change.
func (c Change) Version() uint64 {
	return c.Document.Version()
}

// ChangeFunc receives editor changes.
// It is called after the editor lock is released, in registration order.
// Changes made by concurrent writers may arrive out of order; observers
// that keep derived state should drop a Change whose Version is not past
// the last one they applied.
type ChangeFunc func(Change)

// Checkpoint marks a position in the undo history.
type Checkpoint = history.Checkpoint

// State is a consistent snapshot of the editor.
type State struct {
	Document  *document.Document
	Selection selection.Selection
	CanUndo   bool
	CanRedo   bool
}

// Editor couples a document, its selection and history, and optional
// persistence behind a single-writer lock.
//
// All operations are thread-safe and can be called from multiple goroutines.
// Mutations are serialized: each intent runs its edit and formatter pass
// to completion before the next one starts.
type Editor struct {
	mu sync.RWMutex

	// saveMu serializes Save and Load so writes reach the store in
	// snapshot order.
	saveMu sync.Mutex

	// Core components
	doc     *document.Document
	sel     selection.Selection
	handler *intent.Handler
	history *history.History

	// Persistence
	store  storage.Store
	key    string
	format codec.Format

	// Observers
	obsMu     sync.Mutex
	observers []observer
	nextObs   int

	// Configuration
	rules          []shorthand.Rule
	placement      shorthand.Placement
	maxUndoEntries int
	changeLogSize  int
	newID          func() document.BlockID
	readOnly       bool
	logger         *slog.Logger
}

type observer struct {
	id int
	fn ChangeFunc
}

// New creates a new Editor with the given options.
// It fails only when the configured rule table is invalid.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		key:            DefaultStoreKey,
		format:         codec.FormatNative,
		rules:          shorthand.DefaultRules(),
		maxUndoEntries: DefaultMaxUndoEntries,
		newID:          document.NewBlockID,
		logger:         slog.New(slog.DiscardHandler),
	}

	// Apply options to get configuration
	for _, opt := range opts {
		opt(e)
	}

	handler, err := e.newHandler(e.rules)
	if err != nil {
		return nil, err
	}
	e.handler = handler

	if e.doc == nil {
		e.doc = e.emptyDocument(0)
	}
	e.sel = selection.Start(e.doc)
	e.history = history.New(e.maxUndoEntries)

	return e, nil
}

func (e *Editor) newHandler(rules []shorthand.Rule) (*intent.Handler, error) {
	f, err := shorthand.New(rules, shorthand.WithPlacement(e.placement))
	if err != nil {
		return nil, fmt.Errorf("shorthand rules: %w", err)
	}
	return intent.NewHandler(intent.WithFormatter(f), intent.WithIDGenerator(e.newID)), nil
}

func (e *Editor) emptyDocument(version uint64) *document.Document {
	d, _ := document.NewFromBlocks([]*document.Block{
		document.NewBlock(e.newID(), document.BlockParagraph),
	}, e.docOptions(version)...)
	return d
}

func (e *Editor) docOptions(version uint64) []document.Option {
	opts := []document.Option{document.WithVersion(version)}
	if e.changeLogSize > 0 {
		opts = append(opts, document.WithChangeLogSize(e.changeLogSize))
	}
	return opts
}

// ============================================================================
// Read Operations
// ============================================================================

// Document returns the current document.
func (e *Editor) Document() *document.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc
}

// Selection returns the current selection.
func (e *Editor) Selection() selection.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel
}

// State returns the document, selection and history flags as one snapshot.
func (e *Editor) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return State{
		Document:  e.doc,
		Selection: e.sel,
		CanUndo:   e.history.CanUndo(),
		CanRedo:   e.history.CanRedo(),
	}
}

// Rules returns the active shorthand rules in the order they are tried.
func (e *Editor) Rules() []shorthand.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.handler.Formatter().Rules()
}

// IsReadOnly returns true if the editor rejects mutations.
func (e *Editor) IsReadOnly() bool {
	return e.readOnly
}

// SetSelection replaces the selection. The selection is remapped and
// clamped against the current document; the stored value is returned.
func (e *Editor) SetSelection(sel selection.Selection) selection.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = selection.ClampToDocument(sel, e.doc)
	return e.sel
}

// SetRules swaps the shorthand rule table. Invalid tables are rejected and
// the previous rules stay active.
func (e *Editor) SetRules(rules []shorthand.Rule) error {
	handler, err := e.newHandler(rules)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.handler = handler
	e.rules = rules
	e.mu.Unlock()

	e.logger.Debug("shorthand rules replaced", "rules", len(rules))
	return nil
}

// ============================================================================
// Write Operations
// ============================================================================

// Handle applies one intent at the current selection, runs the shorthand
// formatter on the result and records each step in history.
func (e *Editor) Handle(in intent.Intent) (intent.Result, error) {
	e.mu.Lock()

	if e.readOnly {
		e.mu.Unlock()
		return intent.Result{Document: e.doc, Selection: e.sel}, ErrReadOnly
	}

	res, err := e.handler.Handle(e.doc, e.sel, in)
	if err != nil {
		e.mu.Unlock()
		return res, err
	}

	for _, step := range res.Steps {
		e.history.Push(step)
		e.logger.Debug("history push",
			"step", step.Description(),
			"transforms", len(step.Transforms),
			"version", res.Document.Version())
	}
	if res.Formatted {
		e.logger.Debug("shorthand applied",
			"prefix", res.Rule.Prefix,
			"rule", res.Rule.String(),
			"block", res.Selection.Focus.Block)
	}
	e.doc, e.sel = res.Document, res.Selection
	e.mu.Unlock()

	if res.Changed {
		e.notify(Change{
			Kind:      ChangeEdit,
			Document:  res.Document,
			Selection: res.Selection,
			Steps:     res.Steps,
			Formatted: res.Formatted,
			Rule:      res.Rule,
		})
	}
	return res, nil
}

// Type delivers text one grapheme cluster at a time as InsertCharacter
// intents, the way keystrokes arrive. It stops at the first error.
func (e *Editor) Type(text string) error {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if _, err := e.Handle(intent.InsertCharacter(g.Str())); err != nil {
			return err
		}
	}
	return nil
}

// InsertText inserts text as a single intent.
func (e *Editor) InsertText(text string) error {
	_, err := e.Handle(intent.InsertText(text))
	return err
}

// Backspace deletes the selection, or the grapheme cluster before the cursor.
func (e *Editor) Backspace() error {
	_, err := e.Handle(intent.DeleteBackward())
	return err
}

// DeleteForward deletes the selection, or the grapheme cluster after the cursor.
func (e *Editor) DeleteForward() error {
	_, err := e.Handle(intent.DeleteForward())
	return err
}

// ToggleStyle toggles style over the selection.
func (e *Editor) ToggleStyle(style document.Style) error {
	_, err := e.Handle(intent.ToggleStyle(style))
	return err
}

// SplitBlock splits the focus block at the cursor (Enter).
func (e *Editor) SplitBlock() error {
	_, err := e.Handle(intent.SplitBlock())
	return err
}

// SetBlockType sets the type of every block the selection touches.
func (e *Editor) SetBlockType(typ document.BlockType) error {
	_, err := e.Handle(intent.SetBlockType(typ))
	return err
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the most recent step and restores the selection that
// preceded it.
func (e *Editor) Undo() error {
	return e.replay(ChangeUndo)
}

// Redo reapplies the most recently undone step and restores the selection
// that followed it.
func (e *Editor) Redo() error {
	return e.replay(ChangeRedo)
}

func (e *Editor) replay(kind ChangeKind) error {
	e.mu.Lock()

	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	if e.history.IsGrouping() {
		e.mu.Unlock()
		return ErrGroupActive
	}

	var (
		doc   *document.Document
		entry history.Entry
		err   error
	)
	if kind == ChangeUndo {
		doc, entry, err = e.history.Undo(e.doc)
	} else {
		doc, entry, err = e.history.Redo(e.doc)
	}
	if err != nil {
		e.mu.Unlock()
		return err
	}

	sel := entry.RestoreBefore(doc)
	if kind == ChangeRedo {
		sel = entry.RestoreAfter(doc)
	}
	e.doc, e.sel = doc, sel
	e.logger.Debug("history "+string(kind),
		"step", entry.Description(),
		"version", doc.Version(),
		"undo", e.history.UndoCount(),
		"redo", e.history.RedoCount())
	e.mu.Unlock()

	e.notify(Change{Kind: kind, Document: doc, Selection: sel, Steps: []history.Entry{entry}})
	return nil
}

// CanUndo returns true if there are operations to undo.
func (e *Editor) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanUndo()
}

// CanRedo returns true if there are operations to redo.
func (e *Editor) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.CanRedo()
}

// UndoInfo returns descriptions of the undoable steps, oldest first.
func (e *Editor) UndoInfo() []history.Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.UndoInfo()
}

// RedoInfo returns descriptions of the redoable steps, oldest first.
func (e *Editor) RedoInfo() []history.Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.RedoInfo()
}

// PeekUndo describes the step Undo would revert.
func (e *Editor) PeekUndo() (history.Info, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.PeekUndo()
}

// PeekRedo describes the step Redo would reapply.
func (e *Editor) PeekRedo() (history.Info, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.PeekRedo()
}

// SetMaxUndoEntries changes the undo depth, dropping the oldest steps when
// the stack is already deeper.
func (e *Editor) SetMaxUndoEntries(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.SetMaxEntries(n)
	e.maxUndoEntries = e.history.MaxEntries()
}

// MaxUndoEntries returns the undo depth.
func (e *Editor) MaxUndoEntries() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.MaxEntries()
}

// Group runs fn and records every step pushed while it runs, formatter
// passes included, as one undo unit named name. If fn fails the group is
// reverted and fn's error is returned. Steps made by other goroutines
// while fn runs join the group. A Group inside a Group joins the outer one.
func (e *Editor) Group(name string, fn func() error) error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	if e.history.IsGrouping() {
		e.mu.Unlock()
		return fn()
	}
	cp := e.history.Checkpoint()
	scope := e.history.GroupScope(name)
	e.mu.Unlock()

	err := fn()

	e.mu.Lock()
	scope.End()
	e.mu.Unlock()

	if err == nil {
		return nil
	}
	if rerr := e.RevertTo(cp); rerr != nil {
		return errors.Join(err, fmt.Errorf("revert %s: %w", name, rerr))
	}
	return err
}

// Checkpoint returns a mark at the current undo depth.
func (e *Editor) Checkpoint() Checkpoint {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.Checkpoint()
}

// RevertTo undoes every step recorded since cp and restores the selection
// from before the first of them. Steps trimmed by the undo depth cannot
// be reverted.
func (e *Editor) RevertTo(cp Checkpoint) error {
	return e.seek(cp, ChangeUndo)
}

// ReplayTo redoes steps until the undo depth reaches cp again, as far as
// the redo stack allows.
func (e *Editor) ReplayTo(cp Checkpoint) error {
	return e.seek(cp, ChangeRedo)
}

func (e *Editor) seek(cp Checkpoint, kind ChangeKind) error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	if e.history.IsGrouping() {
		e.mu.Unlock()
		return ErrGroupActive
	}

	var (
		doc   *document.Document
		entry history.Entry
		err   error
	)
	if kind == ChangeUndo {
		doc, entry, err = e.history.RevertTo(cp, e.doc)
	} else {
		doc, entry, err = e.history.ReplayTo(cp, e.doc)
	}
	moved := doc != e.doc
	if moved {
		e.doc = doc
		if kind == ChangeUndo {
			e.sel = entry.RestoreBefore(doc)
		} else {
			e.sel = entry.RestoreAfter(doc)
		}
	}
	sel := e.sel
	e.logger.Debug("history seek "+string(kind),
		"version", doc.Version(),
		"undo", e.history.UndoCount(),
		"redo", e.history.RedoCount())
	e.mu.Unlock()

	if moved {
		e.notify(Change{Kind: kind, Document: doc, Selection: sel})
	}
	return err
}

// ============================================================================
// Persistence
// ============================================================================

// Save serializes the current document to the store.
// The document snapshot is taken under the editor lock, so Save never
// observes a half-applied intent; the write happens outside it so edits
// continue meanwhile. Saves are serialized: each one snapshots after the
// previous write finished, so the store never ends up older than the last
// Save to return.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.RLock()
	doc := e.doc
	e.mu.RUnlock()

	data, err := codec.Encode(doc, e.format)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := e.store.Set(ctx, e.key, data); err != nil {
		return fmt.Errorf("save %s: %w", e.key, err)
	}

	e.logger.Info("document saved",
		"key", e.key,
		"format", e.format.String(),
		"blocks", doc.Len(),
		"bytes", len(data),
		"version", doc.Version())
	return nil
}

// Load replaces the document with the one stored under the editor's key
// and clears history. The loaded document's version continues past the
// current one.
//
// When the stored value is corrupt the editor resets to an empty document
// and Load returns an error wrapping document.ErrCorruptState. A missing
// key returns storage.ErrNotFound and leaves the editor unchanged.
// Load is allowed on read-only editors.
func (e *Editor) Load(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	data, err := e.store.Get(ctx, e.key)
	if err != nil && !errors.Is(err, storage.ErrChecksum) && !errors.Is(err, storage.ErrCorrupt) {
		return fmt.Errorf("load %s: %w", e.key, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	version := e.doc.Version() + 1

	var doc *document.Document
	if err == nil {
		doc, err = codec.Load(data, e.docOptions(version)...)
	} else {
		err = fmt.Errorf("%w: %w", document.ErrCorruptState, err)
	}
	if err != nil {
		e.doc = e.emptyDocument(version)
		e.sel = selection.Start(e.doc)
		e.history.Clear()
		reset := e.doc
		e.mu.Unlock()

		e.logger.Warn("stored document is corrupt, starting empty", "key", e.key, "error", err)
		e.notify(Change{Kind: ChangeReset, Document: reset, Selection: selection.Start(reset)})
		return fmt.Errorf("load %s: %w", e.key, err)
	}

	e.doc = doc
	e.sel = selection.Start(doc)
	e.history.Clear()
	e.mu.Unlock()

	e.logger.Info("document loaded",
		"key", e.key,
		"format", codec.Detect(data).String(),
		"blocks", doc.Len(),
		"bytes", len(data),
		"version", doc.Version())
	e.notify(Change{Kind: ChangeLoad, Document: doc, Selection: selection.Start(doc)})
	return nil
}

// Reset replaces the document with an empty one and clears history.
func (e *Editor) Reset() error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	e.doc = e.emptyDocument(e.doc.Version() + 1)
	e.sel = selection.Start(e.doc)
	e.history.Clear()
	doc, sel := e.doc, e.sel
	e.mu.Unlock()

	e.notify(Change{Kind: ChangeReset, Document: doc, Selection: sel})
	return nil
}

// ============================================================================
// Observers
// ============================================================================

// OnChange registers fn to receive every state change and returns a
// function that unregisters it.
func (e *Editor) OnChange(fn ChangeFunc) (cancel func()) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	id := e.nextObs
	e.nextObs++
	e.observers = append(e.observers, observer{id: id, fn: fn})

	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		for i, o := range e.observers {
			if o.id == id {
				e.observers = append(e.observers[:i:i], e.observers[i+1:]...)
				return
			}
		}
	}
}

func (e *Editor) notify(c Change) {
	e.obsMu.Lock()
	observers := make([]observer, len(e.observers))
	copy(observers, e.observers)
	e.obsMu.Unlock()

	for _, o := range observers {
		o.fn(c)
	}
}
