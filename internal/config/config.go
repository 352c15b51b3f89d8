package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"puffin/internal/model"
)

// Config is the root configuration for puffin, stored in
// ~/.puffin/config.json. The file supports single-line // comments for
// documentation purposes.
type Config struct {
	// DataDir is where blobs live. Empty means ~/.puffin.
	DataDir string `json:"data_dir"`
	// Backend selects the blob store: "file" or "sqlite".
	Backend string `json:"backend"`
	// TimeFormat is the display preference, "24h" or "12h". Stored
	// times are always 24h; this only affects output.
	TimeFormat string `json:"time_format"`
	// Language is the UI language code for labels.
	Language string `json:"language"`
	// Comments enables free-text annotations on entries.
	Comments bool `json:"comments"`
	// LongSessions raises the per-entry amount cap from 1.00 to 1.20.
	LongSessions bool `json:"long_sessions"`
}

const (
	DefaultBackend    = "file"
	DefaultTimeFormat = "24h"
	DefaultLanguage   = "en"
)

// AmountCap returns the maximum per-entry amount under the current
// flags. The cap only limits input; averages are unaffected.
func (c Config) AmountCap() float64 {
	if c.LongSessions {
		return model.LongSessionAmountCap
	}
	return model.DefaultAmountCap
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Backend:    DefaultBackend,
		TimeFormat: DefaultTimeFormat,
		Language:   DefaultLanguage,
		Comments:   true,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON
// parsing, allowing human-readable documentation inside the file.
const configTemplate = `// puffin configuration – ~/.puffin/config.json
//
// All settings are optional; the built-in defaults shown below work
// out of the box. Edit this file to customise puffin behaviour.
{
  // Directory holding the data blobs. Empty = ~/.puffin.
  "data_dir": "",

  // Blob store backend:
  // • "file"   – one JSON file per blob, atomic writes (default)
  // • "sqlite" – a single puffin.db key/value database
  "backend": "file",

  // Clock display preference, "24h" or "12h".
  // Times are always stored in 24-hour form regardless.
  "time_format": "24h",

  // Language code for labels.
  "language": "en",

  // Allow free-text comments on log entries.
  "comments": true,

  // Raise the per-entry amount cap from 1.00 to 1.20.
  "long_sessions": false
}
`

// configFilePath returns the path to ~/.puffin/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".puffin", "config.json"), nil
}

// DefaultDataDir returns ~/.puffin.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".puffin"), nil
}

// stripLineComments removes lines whose leading non-whitespace content
// starts with //. Only full-line comments are handled.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.puffin/config.json, creating it with annotated
// defaults on first run, then applies environment overrides. A .env
// file in the working directory is honoured if present. Environment
// variables: PUFFIN_DATA_DIR, PUFFIN_BACKEND.
func Load() (Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return cfg, err
	}

	_ = godotenv.Load()
	if v := os.Getenv("PUFFIN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PUFFIN_BACKEND"); v != "" {
		cfg.Backend = v
	}
	return cfg, nil
}

func loadFile() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can
		// discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always
	// get a usable Config even if the user only partially fills in the
	// file.
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = DefaultTimeFormat
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated
// default config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
