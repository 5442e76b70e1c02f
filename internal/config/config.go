// Package config builds the effective application configuration by merging
// hardcoded defaults, an optional TOML config file, and CLI flags, with CLI
// flags winning on conflict.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// DisplayConfig controls how entries are rendered.
type DisplayConfig struct {
	Timestamps      bool
	TimestampFormat string
}

// TmuxConfig controls the tmux pane-spawning adapter.
type TmuxConfig struct {
	SessionPrefix string
	Layout        string
}

// AppConfig is the fully merged, effective configuration used throughout
// the program.
type AppConfig struct {
	Project string
	Session string
	Verbose bool
	Theme   Theme
	Display DisplayConfig
	Tmux    TmuxConfig
}

// DefaultAppConfig returns the hardcoded defaults, before any file or CLI
// overlay is applied.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Theme: ThemeDark,
		Display: DisplayConfig{
			Timestamps:      true,
			TimestampFormat: "15:04:05",
		},
		Tmux: TmuxConfig{
			SessionPrefix: "cc-tail",
			Layout:        "tiled",
		},
	}
}

// fileConfig is the TOML-deserializable shape. Every field is a pointer (or
// nested struct of pointers) so that a missing key leaves it nil and falls
// through to the default rather than overwriting it with a zero value.
// Unknown keys are silently ignored by BurntSushi/toml.
type fileConfig struct {
	Verbose *bool             `toml:"verbose"`
	Theme   *string           `toml:"theme"`
	Display fileDisplayConfig `toml:"display"`
	Tmux    fileTmuxConfig    `toml:"tmux"`
}

type fileDisplayConfig struct {
	Timestamps      *bool   `toml:"timestamps"`
	TimestampFormat *string `toml:"timestamp_format"`
}

type fileTmuxConfig struct {
	SessionPrefix *string `toml:"session_prefix"`
	Layout        *string `toml:"layout"`
}

// DefaultConfigPath returns ~/.config/cc-tail/config.toml (or the
// OS-appropriate equivalent via os.UserConfigDir), or "" if the user's
// config directory cannot be determined.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cc-tail", "config.toml")
}

// loadFileConfig reads and parses path. It returns ok=false (without
// logging) if the file simply does not exist — that's the common case when
// no config file has ever been created — and logs a warning and returns
// ok=false if the file exists but cannot be read or parsed.
func loadFileConfig(path string, logger *log.Logger) (fileConfig, bool) {
	var cfg fileConfig

	if _, err := os.Stat(path); err != nil {
		return cfg, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to read config file", "path", path, "err", err)
		}
		return cfg, false
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		if logger != nil {
			logger.Warn("failed to parse config file", "path", path, "err", err)
		}
		return cfg, false
	}

	return cfg, true
}

// CLIOptions carries the CLI flags relevant to config merging. Fields use
// Go zero values as "not provided" (empty string, false), matching cobra's
// flag defaults; ThemeSet distinguishes "no --theme flag" from a future
// zero-value Theme.
type CLIOptions struct {
	Project    string
	Session    string
	Verbose    bool
	Theme      Theme
	ThemeSet   bool
	ConfigPath string
}

// Build merges defaults, an optional config file, and CLI flags into the
// effective AppConfig. Precedence (highest wins): CLI flags explicitly
// provided, then config file values, then hardcoded defaults.
func Build(opts CLIOptions, logger *log.Logger) AppConfig {
	cfg := DefaultAppConfig()

	path := opts.ConfigPath
	if path == "" {
		path = DefaultConfigPath()
	}

	if path != "" {
		fc, ok := loadFileConfig(path, logger)
		if ok {
			if fc.Verbose != nil {
				cfg.Verbose = *fc.Verbose
			}
			if fc.Theme != nil {
				if theme, ok := ParseTheme(*fc.Theme); ok {
					cfg.Theme = theme
				} else if logger != nil {
					logger.Warn("unknown theme in config file, using default", "theme", *fc.Theme)
				}
			}
			if fc.Display.Timestamps != nil {
				cfg.Display.Timestamps = *fc.Display.Timestamps
			}
			if fc.Display.TimestampFormat != nil {
				cfg.Display.TimestampFormat = *fc.Display.TimestampFormat
			}
			if fc.Tmux.SessionPrefix != nil {
				cfg.Tmux.SessionPrefix = *fc.Tmux.SessionPrefix
			}
			if fc.Tmux.Layout != nil {
				cfg.Tmux.Layout = *fc.Tmux.Layout
			}
		} else if opts.ConfigPath != "" && logger != nil {
			// User explicitly passed --config; if it doesn't exist at all,
			// say so (the malformed/unreadable cases already warned above).
			if _, err := os.Stat(path); err != nil {
				logger.Warn("config file not found", "path", path)
			}
		}
	}

	if opts.Project != "" {
		cfg.Project = opts.Project
	}
	if opts.Session != "" {
		cfg.Session = opts.Session
	}
	if opts.Verbose {
		cfg.Verbose = true
	}
	if opts.ThemeSet {
		cfg.Theme = opts.Theme
	}

	return cfg
}
