package config

import (
	"fmt"
	"strconv"
	"strings"
)

// envBinding maps an environment variable (without prefix) to a setting.
type envBinding struct {
	name string
	path string
	set  func(c *Config, v string) error
}

// envBindings lists every environment override. LOG_LEVEL is a short
// alias for LOGGING_LEVEL and wins when both are set.
var envBindings = []envBinding{
	{"EDITOR_MAX_UNDO_ENTRIES", "editor.max_undo_entries", setInt(func(c *Config) *int { return &c.Editor.MaxUndoEntries })},
	{"EDITOR_CHANGE_LOG_SIZE", "editor.change_log_size", setInt(func(c *Config) *int { return &c.Editor.ChangeLogSize })},
	{"EDITOR_READ_ONLY", "editor.read_only", setBool(func(c *Config) *bool { return &c.Editor.ReadOnly })},
	{"EDITOR_PLACEMENT", "editor.placement", setString(func(c *Config) *string { return &c.Editor.Placement })},
	{"STORAGE_BACKEND", "storage.backend", setString(func(c *Config) *string { return &c.Storage.Backend })},
	{"STORAGE_PATH", "storage.path", setString(func(c *Config) *string { return &c.Storage.Path })},
	{"STORAGE_KEY", "storage.key", setString(func(c *Config) *string { return &c.Storage.Key })},
	{"STORAGE_FORMAT", "storage.format", setString(func(c *Config) *string { return &c.Storage.Format })},
	{"STORAGE_CHECKSUM", "storage.checksum", setBool(func(c *Config) *bool { return &c.Storage.Checksum })},
	{"STORAGE_COMPRESS", "storage.compress", setBool(func(c *Config) *bool { return &c.Storage.Compress })},
	{"LOGGING_LEVEL", "logging.level", setString(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_LEVEL", "logging.level", setString(func(c *Config) *string { return &c.Logging.Level })},
}

// EnvNames returns the recognized environment variable names for prefix.
func EnvNames(prefix string) []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = prefix + b.name
	}
	return names
}

// applyEnv overrides cfg with the bound environment variables.
// Empty string values are treated as valid values, not as unset.
func applyEnv(cfg *Config, prefix string, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(prefix + b.name)
		if !ok {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			return &ValidationError{
				Path:    b.path,
				Message: fmt.Sprintf("from %s%s: %v", prefix, b.name, err),
				Value:   v,
			}
		}
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not an integer")
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// parseBool accepts true/yes/on/1 and false/no/off/0, case-insensitively.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean")
}
