package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/tidwall/pretty"

	"github.com/dshills/inkwell/internal/codec"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/selection"
	"github.com/dshills/inkwell/internal/render"
)

// styleCommands maps toggle commands to inline styles.
var styleCommands = map[string]document.Style{
	"bold":      document.StyleBold,
	"italic":    document.StyleItalic,
	"underline": document.StyleUnderline,
	"code":      document.StyleCode,
	"strike":    document.StyleStrikethrough,
	"red":       document.StyleRedLine,
}

// REPL is the interactive editing loop. Lines are typed into the document
// one character at a time; lines starting with ':' are commands.
type REPL struct {
	editor   *engine.Editor
	renderer *render.Renderer
	out      io.Writer
	ctx      context.Context
	logger   *slog.Logger
	liner    *liner.State
	marks    map[string]engine.Checkpoint
}

// historyFile returns the path to the prompt history file.
func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".inkwell_history")
}

// Run starts the loop and returns when the user quits or input ends.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}
	defer r.saveHistory()

	fmt.Fprintln(r.out, "inkwell - type text, or :help for commands")
	r.show()

	for {
		line, err := r.liner.Prompt("> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		if line == "" {
			continue
		}
		r.liner.AppendHistory(line)

		if !strings.HasPrefix(line, ":") {
			r.report(r.editor.Type(line))
			r.show()
			continue
		}

		quit, err := r.exec(strings.Fields(line[1:]))
		if quit {
			return nil
		}
		r.report(err)
	}
}

// exec runs one command. It reports true when the loop should end.
func (r *REPL) exec(fields []string) (bool, error) {
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	if style, ok := styleCommands[cmd]; ok {
		return false, r.edit(r.editor.ToggleStyle(style))
	}

	switch cmd {
	case "q", "quit", "exit":
		return true, nil
	case "help", "?":
		r.printHelp()
		return false, nil
	case "enter":
		return false, r.edit(r.editor.SplitBlock())
	case "bs":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return false, fmt.Errorf("bs: invalid count %q", args[0])
			}
			n = v
		}
		for range n {
			if err := r.editor.Backspace(); err != nil {
				return false, err
			}
		}
		r.show()
		return false, nil
	case "del":
		return false, r.edit(r.editor.DeleteForward())
	case "type":
		if len(args) != 1 {
			return false, errors.New("usage: :type <block-type>")
		}
		return false, r.edit(r.editor.SetBlockType(document.BlockType(args[0])))
	case "undo":
		return false, r.edit(r.editor.Undo())
	case "redo":
		return false, r.edit(r.editor.Redo())
	case "select":
		return false, r.cmdSelect(args)
	case "show":
		r.show()
		return false, nil
	case "save":
		if err := r.editor.Save(r.ctx); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, "saved")
		return false, nil
	case "load":
		return false, r.edit(r.editor.Load(r.ctx))
	case "reset":
		return false, r.edit(r.editor.Reset())
	case "json":
		return false, r.dump(codec.FormatNative)
	case "draft":
		return false, r.dump(codec.FormatDraftRaw)
	case "history":
		r.cmdHistory()
		return false, nil
	case "paste":
		return false, r.cmdPaste(strings.Join(args, " "))
	case "mark":
		return false, r.cmdMark(args)
	case "revert", "replay":
		return false, r.cmdSeek(cmd, args)
	}
	return false, fmt.Errorf("unknown command :%s (type :help for commands)", cmd)
}

// edit redraws the document after a successful edit.
func (r *REPL) edit(err error) error {
	if err != nil {
		return err
	}
	r.show()
	return nil
}

// cmdSelect selects a rune range in the focused block.
func (r *REPL) cmdSelect(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: :select <start> <end>")
	}
	start, err1 := strconv.Atoi(args[0])
	end, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("select: invalid offsets %q %q", args[0], args[1])
	}

	doc := r.editor.Document()
	block := r.editor.Selection().Focus.Block
	sel := selection.NewSelection(
		selection.Position{Block: block, Offset: start},
		selection.Position{Block: block, Offset: end},
	).At(doc.Version())
	got := r.editor.SetSelection(sel)
	if got != sel {
		fmt.Fprintf(r.out, "selection clamped to %s\n", got)
	}
	r.show()
	return nil
}

// cmdHistory lists the undo and redo stacks, oldest first.
func (r *REPL) cmdHistory() {
	undo, redo := r.editor.UndoInfo(), r.editor.RedoInfo()
	if len(undo) == 0 && len(redo) == 0 {
		fmt.Fprintln(r.out, "history is empty")
		return
	}
	for i, info := range undo {
		fmt.Fprintf(r.out, "%3d  %s  %s (%d)\n", i+1, info.Timestamp.Format("15:04:05"), info.Description, info.Transforms)
	}
	for i := len(redo) - 1; i >= 0; i-- {
		info := redo[i]
		fmt.Fprintf(r.out, "  +  %s  %s (%d)\n", info.Timestamp.Format("15:04:05"), info.Description, info.Transforms)
	}
	if info, ok := r.editor.PeekUndo(); ok {
		fmt.Fprintf(r.out, "undo: %s\n", info.Description)
	}
	if info, ok := r.editor.PeekRedo(); ok {
		fmt.Fprintf(r.out, "redo: %s\n", info.Description)
	}
}

// cmdPaste types text as one undo unit. A literal \n starts a new block.
func (r *REPL) cmdPaste(text string) error {
	if text == "" {
		return errors.New("usage: :paste <text>")
	}
	err := r.editor.Group("Paste", func() error {
		for i, line := range strings.Split(text, `\n`) {
			if i > 0 {
				if err := r.editor.SplitBlock(); err != nil {
					return err
				}
			}
			if err := r.editor.Type(line); err != nil {
				return err
			}
		}
		return nil
	})
	return r.edit(err)
}

// cmdMark names the current history position.
func (r *REPL) cmdMark(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: :mark <name>")
	}
	if r.marks == nil {
		r.marks = make(map[string]engine.Checkpoint)
	}
	r.marks[args[0]] = r.editor.Checkpoint()
	fmt.Fprintf(r.out, "marked %s\n", args[0])
	return nil
}

// cmdSeek undoes back to, or redoes forward to, a named mark.
func (r *REPL) cmdSeek(cmd string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: :%s <mark>", cmd)
	}
	cp, ok := r.marks[args[0]]
	if !ok {
		return fmt.Errorf("%s: no mark %q", cmd, args[0])
	}
	if cmd == "revert" {
		return r.edit(r.editor.RevertTo(cp))
	}
	return r.edit(r.editor.ReplayTo(cp))
}

// dump prints the document in format f.
func (r *REPL) dump(f codec.Format) error {
	data, err := codec.Encode(r.editor.Document(), f)
	if err != nil {
		return err
	}
	data = pretty.Pretty(data)
	if r.renderer.Profile() != render.ProfileNone {
		data = pretty.Color(data, nil)
	}
	_, err = r.out.Write(data)
	return err
}

func (r *REPL) show() {
	state := r.editor.State()
	if err := r.renderer.Render(r.out, state.Document, state.Selection); err != nil {
		r.logger.Error("render failed", "error", err)
	}
}

func (r *REPL) report(err error) {
	if err != nil {
		fmt.Fprintf(r.out, "error: %v\n", err)
	}
}

// saveHistory persists prompt history to disk.
func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

// commandNames returns every command, sorted.
func commandNames() []string {
	names := []string{
		"quit", "help", "enter", "bs", "del", "type", "undo", "redo",
		"select", "show", "save", "load", "reset", "json", "draft", "history",
		"paste", "mark", "revert", "replay",
	}
	for name := range styleCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// completer provides tab completion for commands.
func (r *REPL) completer(line string) []string {
	if !strings.HasPrefix(line, ":") || strings.Contains(line, " ") {
		return nil
	}
	var out []string
	for _, name := range commandNames() {
		if strings.HasPrefix(":"+name, line) {
			out = append(out, ":"+name)
		}
	}
	return out
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Text typed at the prompt is inserted one character at a time, so
shortcuts like "# ", "* ", "** " and "*** " fire as you type. With the
default editor.placement = "start" the cursor moves to the start of the
block when a shortcut fires, so "** Warn" typed in one line becomes
"arnW". Set editor.placement = "preserve" in the config file (or
INKWELL_EDITOR_PLACEMENT=preserve) to keep typing after the text.

Commands:
  :enter              Split the block at the cursor
  :bs [n]             Backspace n times (default 1)
  :del                Delete forward
  :bold :italic :underline :code :strike :red
                      Toggle an inline style on the selection
  :type <type>        Set the block type (header-one, blockquote, ...)
  :select <a> <b>     Select runes a..b in the current block
  :undo :redo         Step through history
  :history            List the undo and redo stacks
  :paste <text>       Type text as one undo unit; \n starts a new block
  :mark <name>        Name the current history position
  :revert <name>      Undo back to a mark
  :replay <name>      Redo forward to a mark
  :save :load         Persist or restore the document
  :reset              Replace the document with an empty one
  :json :draft        Print the document as inkwell or Draft.js JSON
  :show               Redraw the document
  :quit               Exit
`)
}
