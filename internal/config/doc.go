// Package config provides the configuration system for Inkwell.
//
// Configuration is resolved in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← INKWELL_*; highest priority
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, YAML or JSONC
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Command line flags are applied by the caller on top of the result.
//
// # File Formats
//
// The decoder is chosen by file extension: .toml, .yaml/.yml, and
// .json/.jsonc (JSON with comments and trailing commas). Unknown keys are
// rejected with a *ParseError.
//
//	[editor]
//	max_undo_entries = 1000
//	placement = "start"
//
//	[storage]
//	backend = "sqlite"
//	key = "draftContent"
//	checksum = true
//
//	[[shorthand.rules]]
//	prefix = "> "
//	block_type = "blockquote"
//
//	[styles.redLine]
//	color = "#ff3b30"
//
// # Environment
//
// Each setting has an override named after its path, for example
// INKWELL_STORAGE_BACKEND or INKWELL_EDITOR_READ_ONLY. INKWELL_LOG_LEVEL is
// an alias for INKWELL_LOGGING_LEVEL.
//
// # Live Reload
//
// Watch reloads the file when it changes and passes each valid result to a
// callback.
package config
