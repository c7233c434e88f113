package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/andrei-shtanakov/Vimja/internal/log"
)

// LocalConfigPath is the project-local config file, consulted first.
const LocalConfigPath = ".vimja/config.yaml"

// SetDefaults registers the default of every key on v so environment
// variables and flags bound later can override them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("initial_mode", d.InitialMode)
	v.SetDefault("keymap", d.Keymap)
	v.SetDefault("watch_keymap", d.WatchKeymap)
	v.SetDefault("cursor.normal_width", d.Cursor.NormalWidth)
	v.SetDefault("cursor.insert_width", d.Cursor.InsertWidth)
	v.SetDefault("cursor.pending_width", d.Cursor.PendingWidth)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.show_line_numbers", d.UI.ShowLineNumbers)
	v.SetDefault("ui.show_last_log", d.UI.ShowLastLog)
	v.SetDefault("ui.mouse", d.UI.Mouse)
	v.SetDefault("registers.persist", d.Registers.Persist)
	v.SetDefault("registers.path", d.Registers.Path)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Load reads configuration into v and decodes it.
//
// Lookup order:
//  1. cfgFile, when given (it must exist)
//  2. .vimja/config.yaml in the current directory
//  3. ~/.config/vimja/config.yaml
//
// A missing file in 2 and 3 is not an error; defaults apply. The returned
// path is the file actually read, or "".
func Load(v *viper.Viper, cfgFile string, logger *log.Logger) (Config, string, error) {
	SetDefaults(v)
	v.SetEnvPrefix("VIMJA")
	v.AutomaticEnv()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case fileExists(LocalConfigPath):
		v.SetConfigFile(LocalConfigPath)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "vimja"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, "", err
		}
		logger.Debug(log.CatConfig, "No config file, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, v.ConfigFileUsed(), err
	}
	logger.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed(), "mode", cfg.InitialMode, "keymap", cfg.Keymap)
	return cfg, v.ConfigFileUsed(), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
