// Package main is the entry point for the Inkwell shorthand editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/render"
	"github.com/dshills/inkwell/internal/storage"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command-line settings.
type options struct {
	ConfigPath string
	Backend    string
	Path       string
	Key        string
	LogLevel   string
	ReadOnly   bool
	Watch      bool
	NoLoad     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts == nil {
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open store: %v\n", err)
		return 1
	}
	defer store.Close()

	editor, err := engine.New(cfg.EngineOptions(store, logger)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if !opts.NoLoad {
		if err := editor.Load(ctx); err != nil {
			logger.Warn("starting with an empty document", "error", err)
		}
	}

	theme, err := render.ThemeFromConfig(cfg.Styles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.Watch && opts.ConfigPath != "" {
		go watchConfig(ctx, opts.ConfigPath, editor, logger)
	}

	repl := &REPL{
		editor:   editor,
		renderer: render.New(theme, render.DetectProfile(os.Stdout)),
		out:      os.Stdout,
		ctx:      ctx,
		logger:   logger,
	}
	if err := repl.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string) (*options, error) {
	var opts options
	var showVersion bool

	fs := flag.NewFlagSet("inkwell", flag.ContinueOnError)
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (toml, yaml or jsonc)")
	fs.StringVar(&opts.Backend, "backend", "", "Storage backend (memory, file, sqlite)")
	fs.StringVar(&opts.Path, "path", "", "Storage directory or database file")
	fs.StringVarP(&opts.Key, "key", "k", "", "Storage key of the document")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVarP(&opts.ReadOnly, "readonly", "R", false, "Open the document read-only")
	fs.BoolVarP(&opts.Watch, "watch", "w", false, "Reload shorthand rules and undo depth when the config file changes")
	fs.BoolVar(&opts.NoLoad, "no-load", false, "Start with an empty document instead of loading the stored one")
	fs.BoolVarP(&showVersion, "version", "v", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - rich text editing with markdown-style shortcuts\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		for _, name := range config.EnvNames(config.EnvPrefix) {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Printf("Inkwell %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return nil, nil
	}

	if opts.ConfigPath == "" {
		opts.ConfigPath = config.FindFile()
	}
	return &opts, nil
}

// loadConfig loads the configuration and applies command-line overrides,
// which take precedence over the file and the environment.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
	}
	if opts.Path != "" {
		cfg.Storage.Path = opts.Path
	}
	if opts.Key != "" {
		cfg.Storage.Key = opts.Key
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.ReadOnly {
		cfg.Editor.ReadOnly = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watchConfig applies the reloadable settings whenever the config file
// changes.
func watchConfig(ctx context.Context, path string, editor *engine.Editor, logger *slog.Logger) {
	err := config.Watch(ctx, path,
		func(cfg *config.Config) {
			if err := applyConfig(editor, cfg); err != nil {
				logger.Warn("config reload rejected", "path", path, "error", err)
				return
			}
			logger.Info("config reloaded", "path", path,
				"rules", len(cfg.Rules()),
				"max_undo_entries", editor.MaxUndoEntries())
		},
		func(err error) {
			logger.Warn("config reload failed", "path", path, "error", err)
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("config watcher stopped", "error", err)
	}
}

// applyConfig updates the settings a running editor can change: the
// shorthand rules and the undo depth.
func applyConfig(editor *engine.Editor, cfg *config.Config) error {
	if err := editor.SetRules(cfg.Rules()); err != nil {
		return err
	}
	editor.SetMaxUndoEntries(cfg.Editor.MaxUndoEntries)
	return nil
}
