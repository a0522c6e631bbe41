package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/inkwell/internal/codec"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/document"
	"github.com/dshills/inkwell/internal/engine/shorthand"
	"github.com/dshills/inkwell/internal/storage"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

// loader returns a Loader that sees only vars.
func loader(vars map[string]string) *Loader {
	return &Loader{LookupEnv: envMap(vars)}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	require.Equal(t, engine.DefaultMaxUndoEntries, cfg.Editor.MaxUndoEntries)
	require.Equal(t, document.DefaultChangeLogSize, cfg.Editor.ChangeLogSize)
	require.Equal(t, "draftContent", cfg.Storage.Key)
	require.Equal(t, shorthand.DefaultRules(), cfg.Rules())
	require.Equal(t, shorthand.PlaceStart, cfg.CursorPlacement())
	require.Equal(t, codec.FormatNative, cfg.SaveFormat())
}

const tomlConfig = `
[editor]
max_undo_entries = 50
placement = "preserve"

[storage]
backend = "sqlite"
path = "/tmp/ink.db"
key = "notes"
format = "draft-raw"
checksum = true

[logging]
level = "debug"

[[shorthand.rules]]
prefix = "> "
block_type = "blockquote"

[[shorthand.rules]]
prefix = "~ "
style = "STRIKETHROUGH"

[styles.redLine]
color = "#ff0000"
bold = true
`

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", tomlConfig)

	cfg, err := loader(nil).Load(path)
	require.NoError(t, err)

	require.Equal(t, 50, cfg.Editor.MaxUndoEntries)
	require.Equal(t, document.DefaultChangeLogSize, cfg.Editor.ChangeLogSize, "unset keys keep defaults")
	require.Equal(t, shorthand.PlacePreserve, cfg.CursorPlacement())
	require.Equal(t, storage.Options{
		Backend:  storage.BackendSQLite,
		Path:     "/tmp/ink.db",
		Checksum: true,
	}, cfg.StorageOptions())
	require.Equal(t, "notes", cfg.Storage.Key)
	require.Equal(t, codec.FormatDraftRaw, cfg.SaveFormat())
	require.Equal(t, "DEBUG", cfg.LogLevel().String())
	require.Equal(t, []shorthand.Rule{
		shorthand.BlockTypeRule("> ", document.BlockQuote),
		shorthand.StyleRule("~ ", document.StyleStrikethrough),
	}, cfg.Rules())
	require.Equal(t, StyleConfig{Color: "#ff0000", Bold: true}, cfg.Styles["redLine"])
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
editor:
  read_only: true
storage:
  backend: memory
shorthand:
  rules:
    - prefix: "## "
      block_type: header-two
`)
	cfg, err := loader(nil).Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Editor.ReadOnly)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.Equal(t, []shorthand.Rule{shorthand.BlockTypeRule("## ", document.BlockHeaderTwo)}, cfg.Rules())
}

func TestLoadJSONC(t *testing.T) {
	path := writeFile(t, "config.jsonc", `{
	// comments and trailing commas are allowed
	"storage": {
		"backend": "file",
		"path": "/tmp/docs",
		"compress": true,
	},
}`)
	cfg, err := loader(nil).Load(path)
	require.NoError(t, err)

	opts := cfg.StorageOptions()
	require.Equal(t, storage.BackendFile, opts.Backend)
	require.Equal(t, "/tmp/docs", opts.Path)
	require.True(t, opts.Compress)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := loader(nil).Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.toml", tomlConfig)

	cfg, err := loader(map[string]string{
		"INKWELL_EDITOR_MAX_UNDO_ENTRIES": "7",
		"INKWELL_STORAGE_BACKEND":         "memory",
		"INKWELL_STORAGE_CHECKSUM":        "off",
		"INKWELL_LOGGING_LEVEL":           "info",
		"INKWELL_LOG_LEVEL":               "warn",
		"OTHER_STORAGE_KEY":               "ignored",
	}).Load(path)
	require.NoError(t, err)

	require.Equal(t, 7, cfg.Editor.MaxUndoEntries)
	require.Equal(t, "memory", cfg.Storage.Backend)
	require.False(t, cfg.Storage.Checksum)
	require.Equal(t, "notes", cfg.Storage.Key)
	require.Equal(t, "WARN", cfg.LogLevel().String())
}

func TestEnvCustomPrefix(t *testing.T) {
	l := &Loader{Prefix: "INK_", LookupEnv: envMap(map[string]string{"INK_STORAGE_KEY": "k"})}
	cfg, err := l.Load("")
	require.NoError(t, err)
	require.Equal(t, "k", cfg.Storage.Key)
	require.Contains(t, EnvNames("INK_"), "INK_STORAGE_KEY")
}

func TestEnvInvalidValue(t *testing.T) {
	tests := map[string]string{
		"INKWELL_EDITOR_MAX_UNDO_ENTRIES": "lots",
		"INKWELL_STORAGE_COMPRESS":        "maybe",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := loader(map[string]string{name: value}).Load("")
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, value, ve.Value)
			require.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		check   func(t *testing.T, err error)
	}{
		{
			name: "missing file",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrFileNotFound)
			},
		},
		{
			name:    "toml syntax",
			file:    "config.toml",
			content: "[editor]\nmax_undo_entries = = 3\n",
			check: func(t *testing.T, err error) {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				require.Equal(t, 2, pe.Line)
				require.Contains(t, pe.Error(), "line 2")
			},
		},
		{
			name:    "unknown toml key",
			file:    "config.toml",
			content: "[editor]\ntab_size = 4\n",
			check: func(t *testing.T, err error) {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
			},
		},
		{
			name:    "unknown yaml key",
			file:    "config.yml",
			content: "storage:\n  bucket: x\n",
			check: func(t *testing.T, err error) {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
			},
		},
		{
			name:    "bad jsonc",
			file:    "config.json",
			content: `{"editor": }`,
			check: func(t *testing.T, err error) {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				require.Contains(t, pe.Message, "invalid JSONC")
			},
		},
		{
			name:    "unsupported extension",
			file:    "config.ini",
			content: "x=1",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
			},
		},
		{
			name:    "invalid rule",
			file:    "config.toml",
			content: "[[shorthand.rules]]\nprefix = \"! \"\n",
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrInvalidRule)
				require.ErrorIs(t, err, shorthand.ErrInvalidRule)
				require.Contains(t, err.Error(), "shorthand.rules[0]")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.toml")
			if tt.file != "" {
				path = writeFile(t, tt.file, tt.content)
			}
			_, err := loader(nil).Load(path)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Editor.MaxUndoEntries = 0
	cfg.Editor.Placement = "middle"
	cfg.Storage.Backend = "s3"
	cfg.Storage.Key = ""
	cfg.Storage.Format = "xml"
	cfg.Logging.Level = "loud"
	cfg.Styles = map[string]StyleConfig{"BOLD": {Color: "red"}}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrValidationFailed)

	var paths []string
	for _, e := range err.(interface{ Unwrap() []error }).Unwrap() {
		var ve *ValidationError
		require.True(t, errors.As(e, &ve))
		paths = append(paths, ve.Path)
	}
	require.ElementsMatch(t, []string{
		"editor.max_undo_entries",
		"editor.placement",
		"storage.backend",
		"storage.key",
		"storage.format",
		"logging.level",
		"styles.BOLD.color",
	}, paths)
}

func TestStorageOptionsDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := Default()
	require.Equal(t, filepath.Join("/data", AppName, "documents"), cfg.StorageOptions().Path)

	cfg.Storage.Backend = "sqlite"
	require.Equal(t, filepath.Join("/data", AppName, "inkwell.db"), cfg.StorageOptions().Path)

	cfg.Storage.Backend = "memory"
	require.Empty(t, cfg.StorageOptions().Path)
}

func TestEngineOptions(t *testing.T) {
	path := writeFile(t, "config.toml", tomlConfig)
	cfg, err := loader(nil).Load(path)
	require.NoError(t, err)
	cfg.Editor.ReadOnly = true

	store := storage.NewMemory()
	e, err := engine.New(cfg.EngineOptions(store, nil)...)
	require.NoError(t, err)

	var prefixes []string
	for _, r := range e.Rules() {
		prefixes = append(prefixes, r.Prefix)
	}
	require.Equal(t, []string{"> ", "~ "}, prefixes)
	require.True(t, e.IsReadOnly())

	require.NoError(t, e.Save(context.Background()))
	data, err := store.Get(context.Background(), "notes")
	require.NoError(t, err)
	require.Equal(t, codec.FormatDraftRaw, codec.Detect(data))
}

func TestWatchReloads(t *testing.T) {
	path := writeFile(t, "config.toml", "[editor]\nmax_undo_entries = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loaded := make(chan *Config, 4)
	failed := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- loader(nil).Watch(ctx, path, func(c *Config) { loaded <- c }, func(err error) { failed <- err })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[editor]\nmax_undo_entries = 2\n"), 0o644))

	select {
	case c := <-loaded:
		require.Equal(t, 2, c.Editor.MaxUndoEntries)
	case err := <-failed:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	require.NoError(t, os.WriteFile(path, []byte("[editor\n"), 0o644))
	select {
	case err := <-failed:
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
	case <-time.After(5 * time.Second):
		t.Fatal("no error after invalid write")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
