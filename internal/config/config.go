package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/inkwell/internal/codec"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/shorthand"
	"github.com/dshills/inkwell/internal/storage"
)

// AppName names the configuration and data directories.
const AppName = "inkwell"

// Config is the complete Inkwell configuration.
type Config struct {
	Editor    EditorConfig           `toml:"editor" yaml:"editor" json:"editor"`
	Storage   StorageConfig          `toml:"storage" yaml:"storage" json:"storage"`
	Logging   LoggingConfig          `toml:"logging" yaml:"logging" json:"logging"`
	Shorthand ShorthandConfig        `toml:"shorthand" yaml:"shorthand" json:"shorthand"`
	Styles    map[string]StyleConfig `toml:"styles" yaml:"styles" json:"styles"`
}

// EditorConfig holds editing behavior settings.
type EditorConfig struct {
	// MaxUndoEntries bounds the undo history.
	MaxUndoEntries int `toml:"max_undo_entries" yaml:"max_undo_entries" json:"max_undo_entries"`

	// ChangeLogSize bounds the per-document change log used to remap
	// stale selections.
	ChangeLogSize int `toml:"change_log_size" yaml:"change_log_size" json:"change_log_size"`

	// ReadOnly rejects every edit.
	ReadOnly bool `toml:"read_only" yaml:"read_only" json:"read_only"`

	// Placement is the cursor placement after a shorthand rule fires
	// ("start" or "preserve").
	Placement string `toml:"placement" yaml:"placement" json:"placement"`
}

// StorageConfig selects where documents are persisted.
type StorageConfig struct {
	// Backend is "memory", "file" or "sqlite".
	Backend string `toml:"backend" yaml:"backend" json:"backend"`

	// Path is the file store directory or the SQLite database file.
	// Empty selects a location under the user config directory.
	Path string `toml:"path" yaml:"path" json:"path"`

	// Key is the store key the document is saved under.
	Key string `toml:"key" yaml:"key" json:"key"`

	// Format is the serialization written on save ("inkwell" or "draft-raw").
	Format string `toml:"format" yaml:"format" json:"format"`

	// Checksum appends a BLAKE3 digest to stored values.
	Checksum bool `toml:"checksum" yaml:"checksum" json:"checksum"`

	// Compress stores values xz-compressed.
	Compress bool `toml:"compress" yaml:"compress" json:"compress"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" yaml:"level" json:"level"`
}

// ShorthandConfig holds the formatter rule table.
// An empty table selects the built-in rules.
type ShorthandConfig struct {
	Rules []shorthand.Rule `toml:"rules" yaml:"rules" json:"rules"`
}

// StyleConfig describes how the terminal preview draws one inline style.
type StyleConfig struct {
	Color         string `toml:"color" yaml:"color" json:"color"`
	Background    string `toml:"background" yaml:"background" json:"background"`
	Bold          bool   `toml:"bold" yaml:"bold" json:"bold"`
	Italic        bool   `toml:"italic" yaml:"italic" json:"italic"`
	Underline     bool   `toml:"underline" yaml:"underline" json:"underline"`
	Strikethrough bool   `toml:"strikethrough" yaml:"strikethrough" json:"strikethrough"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxUndoEntries: engine.DefaultMaxUndoEntries,
			ChangeLogSize:  document.DefaultChangeLogSize,
			Placement:      shorthand.PlaceStart.String(),
		},
		Storage: StorageConfig{
			Backend: string(storage.BackendFile),
			Key:     engine.DefaultStoreKey,
			Format:  codec.FormatNative.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if c.Editor.MaxUndoEntries <= 0 {
		invalid("editor.max_undo_entries", "must be positive", c.Editor.MaxUndoEntries)
	}
	if c.Editor.ChangeLogSize <= 0 {
		invalid("editor.change_log_size", "must be positive", c.Editor.ChangeLogSize)
	}
	if _, err := shorthand.ParsePlacement(c.Editor.Placement); err != nil {
		invalid("editor.placement", "must be start or preserve", c.Editor.Placement)
	}

	switch storage.Backend(c.Storage.Backend) {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	default:
		invalid("storage.backend", "must be memory, file or sqlite", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		invalid("storage.key", "must not be empty", c.Storage.Key)
	}
	if _, err := codec.ParseFormat(c.Storage.Format); err != nil {
		invalid("storage.format", "must be inkwell or draft-raw", c.Storage.Format)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		invalid("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}

	for i, r := range c.Shorthand.Rules {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("shorthand.rules[%d]: %w: %v", i, ErrInvalidRule, err))
		}
	}

	for name, s := range c.Styles {
		for field, v := range map[string]string{"color": s.Color, "background": s.Background} {
			if v == "" {
				continue
			}
			if _, err := colorful.Hex(v); err != nil {
				invalid("styles."+name+"."+field, "must be a #rrggbb color", v)
			}
		}
	}

	return errors.Join(errs...)
}

// Rules returns the shorthand rule table, or the built-in rules when
// none are configured.
func (c *Config) Rules() []shorthand.Rule {
	if len(c.Shorthand.Rules) == 0 {
		return shorthand.DefaultRules()
	}
	return c.Shorthand.Rules
}

// CursorPlacement returns the parsed editor.placement.
func (c *Config) CursorPlacement() shorthand.Placement {
	p, _ := shorthand.ParsePlacement(c.Editor.Placement)
	return p
}

// SaveFormat returns the parsed storage.format.
func (c *Config) SaveFormat() codec.Format {
	f, err := codec.ParseFormat(c.Storage.Format)
	if err != nil {
		return codec.FormatNative
	}
	return f
}

// LogLevel returns the parsed logging.level.
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Logging.Level)
	return l
}

// StorageOptions returns the store options with the default path resolved.
func (c *Config) StorageOptions() storage.Options {
	opts := storage.Options{
		Backend:  storage.Backend(c.Storage.Backend),
		Path:     c.Storage.Path,
		Checksum: c.Storage.Checksum,
		Compress: c.Storage.Compress,
	}
	if opts.Path == "" {
		switch opts.Backend {
		case storage.BackendFile:
			opts.Path = filepath.Join(DataDir(), "documents")
		case storage.BackendSQLite:
			opts.Path = filepath.Join(DataDir(), AppName+".db")
		}
	}
	return opts
}

// EngineOptions returns the editor options this configuration selects.
// store may be nil to disable persistence.
func (c *Config) EngineOptions(store storage.Store, logger *slog.Logger) []engine.Option {
	opts := []engine.Option{
		engine.WithRules(c.Rules()),
		engine.WithPlacement(c.CursorPlacement()),
		engine.WithMaxUndoEntries(c.Editor.MaxUndoEntries),
		engine.WithChangeLogSize(c.Editor.ChangeLogSize),
		engine.WithFormat(c.SaveFormat()),
		engine.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, engine.WithStore(store, c.Storage.Key))
	}
	if c.Editor.ReadOnly {
		opts = append(opts, engine.WithReadOnly())
	}
	return opts
}

// DataDir returns the directory Inkwell keeps documents in by default.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return "." + AppName
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := l.UnmarshalText([]byte(strings.ToUpper(s)))
	return l, err
}
