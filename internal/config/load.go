package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "INKWELL_"

// configNames are the file names FindFile looks for, in order.
var configNames = []string{"config.toml", "config.yaml", "config.yml", "config.jsonc", "config.json"}

// Loader loads configuration with precedence defaults < file < environment.
type Loader struct {
	// Prefix is the environment variable prefix, EnvPrefix when empty.
	Prefix string

	// LookupEnv reads environment variables, os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
}

// Load loads path with the default Loader.
func Load(path string) (*Config, error) {
	return (&Loader{}).Load(path)
}

// Load builds a Config from the defaults, the file at path (skipped when
// path is empty) and the environment, then validates it.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := Decode(cfg, path, data); err != nil {
			return nil, err
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}
	if err := applyEnv(cfg, prefix, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindFile returns the first config file present in the user config
// directory, or "" when there is none.
func FindFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	for _, name := range configNames {
		p := filepath.Join(dir, AppName, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Decode decodes data over cfg using the format implied by the extension
// of source. Keys absent from data keep their current values; unknown keys
// are an error.
func Decode(cfg *Config, source string, data []byte) error {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".toml":
		return decodeTOML(cfg, source, data)
	case ".yaml", ".yml":
		return decodeYAML(cfg, source, data)
	case ".json", ".jsonc", ".hujson":
		return decodeJSONC(cfg, source, data)
	}
	return &ParseError{Path: source, Message: "unknown extension", Err: ErrUnsupportedFormat}
}

func decodeTOML(cfg *Config, source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func decodeYAML(cfg *Config, source string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}

// decodeJSONC accepts JSON with comments and trailing commas.
func decodeJSONC(cfg *Config, source string, data []byte) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return &ParseError{Path: source, Message: "invalid JSONC: " + err.Error(), Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}
