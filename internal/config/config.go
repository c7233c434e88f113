// Package config provides configuration types, defaults, and persistence for vimja.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andrei-shtanakov/Vimja/internal/command"
	"github.com/andrei-shtanakov/Vimja/internal/keymap"
	"github.com/andrei-shtanakov/Vimja/internal/log"
	"github.com/andrei-shtanakov/Vimja/internal/mode"
	"github.com/andrei-shtanakov/Vimja/internal/tracing"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration options for vimja.
type Config struct {
	// InitialMode is the mode a session starts in: "normal" or "insert".
	InitialMode string `mapstructure:"initial_mode"`

	// Keymap is a keymap file replacing or extending the built-in bindings.
	// Empty uses the built-in table.
	Keymap string `mapstructure:"keymap"`

	// WatchKeymap reloads Keymap while the editor runs whenever the file
	// changes on disk.
	WatchKeymap bool `mapstructure:"watch_keymap"`

	Cursor    CursorConfig    `mapstructure:"cursor"`
	UI        UIConfig        `mapstructure:"ui"`
	Registers RegistersConfig `mapstructure:"registers"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
}

// CursorConfig holds the cursor width requested in each mode, in cells.
type CursorConfig struct {
	NormalWidth  int `mapstructure:"normal_width"`
	InsertWidth  int `mapstructure:"insert_width"`
	PendingWidth int `mapstructure:"pending_width"`
}

// UIConfig holds editor display options.
type UIConfig struct {
	ShowStatusBar   bool `mapstructure:"show_status_bar"`
	ShowLineNumbers bool `mapstructure:"show_line_numbers"`
	ShowLastLog     bool `mapstructure:"show_last_log"` // Echo the latest log entry in the status bar
	Mouse           bool `mapstructure:"mouse"`
}

// RegistersConfig controls saving registers between sessions.
type RegistersConfig struct {
	Persist bool   `mapstructure:"persist"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds debug log options.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Debug bool   `mapstructure:"debug"`
}

// Widths converts the cursor settings for the mode controller.
func (c CursorConfig) Widths() mode.Widths {
	return mode.Widths{Normal: c.NormalWidth, Insert: c.InsertWidth, Pending: c.PendingWidth}
}

// Mode resolves InitialMode. Empty means normal.
func (c Config) Mode() (mode.Mode, error) {
	if c.InitialMode == "" {
		return mode.Normal(), nil
	}
	m, err := keymap.ParseMode(c.InitialMode, "")
	if err != nil {
		return mode.Mode{}, fmt.Errorf("%w: initial_mode: %w", ErrInvalid, err)
	}
	if m.IsPending() {
		return mode.Mode{}, fmt.Errorf("%w: initial_mode must be \"normal\" or \"insert\", got %q", ErrInvalid, c.InitialMode)
	}
	return m, nil
}

// Table loads the configured keymap, or returns the built-in table.
func (c Config) Table() (*command.Table, error) {
	if c.Keymap == "" {
		return command.Default(), nil
	}
	return keymap.LoadFile(ExpandHome(c.Keymap))
}

// Validate checks every section. Empty values fall back to defaults and
// are accepted.
func Validate(c Config) error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if err := ValidateCursor(c.Cursor); err != nil {
		return err
	}
	if c.Registers.Persist && c.Registers.Path == "" {
		return fmt.Errorf("%w: registers.path is required when registers.persist is on", ErrInvalid)
	}
	return ValidateTracing(c.Tracing)
}

// ValidateCursor rejects negative widths.
func ValidateCursor(c CursorConfig) error {
	for name, w := range map[string]int{
		"normal_width":  c.NormalWidth,
		"insert_width":  c.InsertWidth,
		"pending_width": c.PendingWidth,
	} {
		if w < 0 {
			return fmt.Errorf("%w: cursor.%s must not be negative, got %d", ErrInvalid, name, w)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("%w: tracing.sample_rate must be between 0.0 and 1.0, got %v", ErrInvalid, t.SampleRate)
	}

	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", ErrInvalid, t.Exporter)
	}

	// Path requirements only matter when tracing is on
	if t.Enabled {
		if t.Exporter == "file" && t.FilePath == "" {
			return fmt.Errorf("%w: tracing.file_path is required when exporter is \"file\"", ErrInvalid)
		}
		if t.Exporter == "otlp" && t.OTLPEndpoint == "" {
			return fmt.Errorf("%w: tracing.otlp_endpoint is required when exporter is \"otlp\"", ErrInvalid)
		}
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// DefaultTracesFilePath returns ~/.config/vimja/traces/traces.jsonl, or
// "" if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vimja", "traces", "traces.jsonl")
}

// DefaultRegistersPath returns ~/.config/vimja/registers.db, or "" if the
// home directory is unavailable.
func DefaultRegistersPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vimja", "registers.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	widths := mode.DefaultWidths()
	t := tracing.DefaultConfig()
	t.FilePath = DefaultTracesFilePath()
	return Config{
		InitialMode: "normal",
		WatchKeymap: true,
		Cursor: CursorConfig{
			NormalWidth:  widths.Normal,
			InsertWidth:  widths.Insert,
			PendingWidth: widths.Pending,
		},
		UI: UIConfig{
			ShowStatusBar:   true,
			ShowLineNumbers: true,
			ShowLastLog:     false,
			Mouse:           true,
		},
		Registers: RegistersConfig{
			Persist: true,
			Path:    DefaultRegistersPath(),
		},
		Tracing: t,
	}
}

// DefaultConfigTemplate returns the commented file WriteDefaultConfig writes.
func DefaultConfigTemplate() string {
	return `# Vimja Configuration

# Mode new sessions start in: normal (default) or insert
initial_mode: normal

# Keymap file replacing the built-in bindings (run 'vimja keys' to list them).
# Start it with "defaults: true" to extend the built-ins instead.
# keymap: ~/.config/vimja/keymap.yaml

# Reload the keymap file when it changes
watch_keymap: true

# Cursor width in cells for each mode
cursor:
  normal_width: 2
  insert_width: 1
  pending_width: 2

ui:
  show_status_bar: true
  show_line_numbers: true
  show_last_log: false    # Echo the latest log entry in the status bar
  mouse: true             # Click to move the cursor

# Registers saved between sessions
registers:
  persist: true
  # path: ~/.config/vimja/registers.db

# Debug log (also enabled by the --debug flag)
log:
  # path: vimja.log
  debug: false

# Per-key tracing
tracing:
  enabled: false
  exporter: file          # none, file, stdout, or otlp
  # file_path: ~/.config/vimja/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
  service_name: vimja
`
}

// WriteDefaultConfig creates the config file at configPath with the
// default template.
func WriteDefaultConfig(configPath string, logger *log.Logger) error {
	logger.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		logger.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	logger.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
